package constants

import "net/http"

// CodedError is an error carrying the HTTP status code it should be
// reported with. The api error handler walks the unwrap chain looking
// for one.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrUnauthorized = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrDBNotFound   = NewCodedError(http.StatusNotFound, "not found in database")
)

// viper keys
const (
	ViperListenAddr        = "listen_addr"
	ViperAPIBaseURL        = "api_base_url"
	ViperDataSource        = "data_source"
	ViperZenodoRecordURL   = "zenodo_record_url"
	ViperPgDSN             = "pg_dsn"
	ViperSecretKey         = "admin_secret"
	ViperNormalizeGasNames = "normalize_gas_names"
	ViperQueryBatchSize    = "query_batch_size"
)

const CookieKeySecretToken = "secret_token"
