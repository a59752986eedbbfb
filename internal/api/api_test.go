package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/constants"
	"github.com/climatedata/unfcccdi/internal/pkg/utils"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

type fakeSource struct {
	rows []domain.Row
	err  error
}

func (f *fakeSource) Query(context.Context, flexquery.QueryOpts) ([]domain.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeSource) Parties() []domain.Party {
	return []domain.Party{{ID: 7, Code: "DEU", Name: "Germany"}}
}

func (f *fakeSource) Gases() []domain.GasInfo {
	return []domain.GasInfo{{ID: 2, Name: "N₂O"}}
}

type fakeStore struct {
	snapshots []*domain.Snapshot
	rows      []domain.Row
	err       error
}

func (f *fakeStore) InsertSnapshot(_ context.Context, partyCode, source string, rows []domain.Row) (*domain.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snapshot := &domain.Snapshot{ID: uuid.New(), PartyCode: partyCode, Source: source, CreatedAt: time.Now()}
	f.snapshots = append(f.snapshots, snapshot)
	f.rows = rows
	return snapshot, nil
}

func (f *fakeStore) LatestByParty(_ context.Context, partyCode string) (*domain.Snapshot, []domain.Row, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	for _, s := range f.snapshots {
		if s.PartyCode == partyCode {
			return s, f.rows, nil
		}
	}
	return nil, nil, constants.ErrDBNotFound
}

func (f *fakeStore) ListSnapshots(context.Context) ([]*domain.Snapshot, error) {
	return f.snapshots, f.err
}

func newTestAPI(t *testing.T, source *fakeSource, st *fakeStore) *httptest.Server {
	t.Helper()
	svc, err := NewAPIService(source, st)
	require.NoError(t, err)

	srv := httptest.NewServer(svc.router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestQueryEndpoint(t *testing.T) {
	value := 1.5
	source := &fakeSource{rows: []domain.Row{{Party: "DEU", Gas: "N2O", NumberValue: &value}}}
	srv := newTestAPI(t, source, &fakeStore{})

	resp := postJSON(t, srv.URL+"/api/v1/query", `{"party_code":"DEU"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQueryEndpointRequiresPartyCode(t *testing.T) {
	srv := newTestAPI(t, &fakeSource{}, &fakeStore{})

	resp := postJSON(t, srv.URL+"/api/v1/query", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueryEndpointErrorMapping(t *testing.T) {
	t.Run("unknown party is a 400", func(t *testing.T) {
		source := &fakeSource{err: &flexquery.UnknownPartyError{PartyCode: "ASDF"}}
		srv := newTestAPI(t, source, &fakeStore{})

		resp := postJSON(t, srv.URL+"/api/v1/query", `{"party_code":"ASDF"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no data is a 404", func(t *testing.T) {
		source := &fakeSource{err: &flexquery.NoDataError{PartyCodes: []string{"DEU"}}}
		srv := newTestAPI(t, source, &fakeStore{})

		resp := postJSON(t, srv.URL+"/api/v1/query", `{"party_code":"DEU"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPartiesAndGasesEndpoints(t *testing.T) {
	srv := newTestAPI(t, &fakeSource{}, &fakeStore{})

	resp, err := http.Get(srv.URL + "/api/v1/parties/list")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/gases/list")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBackfillRequiresAdminToken(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "test-secret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	source := &fakeSource{rows: []domain.Row{{Party: "DEU"}}}
	st := &fakeStore{}
	srv := newTestAPI(t, source, st)

	resp := postJSON(t, srv.URL+"/api/v1/snapshots/backfill", `{"party_code":"DEU"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{Secret: "test-secret"})
	require.NoError(t, err)

	resp = postJSON(t, srv.URL+"/api/v1/snapshots/backfill", `{"party_code":"DEU"}`,
		&http.Cookie{Name: constants.CookieKeySecretToken, Value: token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, st.snapshots, 1)
	assert.Equal(t, "DEU", st.snapshots[0].PartyCode)

	resp, err2 := http.Get(srv.URL + "/api/v1/snapshots/DEU")
	require.NoError(t, err2)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSnapshotNotFound(t *testing.T) {
	srv := newTestAPI(t, &fakeSource{}, &fakeStore{})

	resp, err := http.Get(srv.URL + "/api/v1/snapshots/XYZ")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
