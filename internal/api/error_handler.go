package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/constants"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

func httpErrorHandler(err error, c echo.Context) {
	msg := err.Error()
	code := http.StatusInternalServerError

	var unknownParty *flexquery.UnknownPartyError
	var noData *flexquery.NoDataError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &unknownParty):
		code = http.StatusBadRequest
	case errors.As(err, &noData):
		code = http.StatusNotFound
	case errors.As(err, &httpErr):
		code = httpErr.Code
		msg = fmt.Sprintf("%v", httpErr.Message)
	default:
		for err != nil {
			if ce, ok := err.(*constants.CodedError); ok {
				code = ce.Code()
				break
			}
			err = errors.Unwrap(err)
		}
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}
