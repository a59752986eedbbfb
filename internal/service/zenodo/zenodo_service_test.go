package zenodo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

const fixtureCSV = `party,category,classification,measure,gas,unit,year,numberValue,stringValue
DEU,1.  Energy,Total for category,Net emissions/removals,N₂O,kt,1990,1.5,
DEU,2.  IPPU,Total for category,Net emissions/removals,CO₂,kt CO₂ equivalent,1990,,NO
MMR,1.  Energy,Total for category,Net emissions/removals,CO₂,kt,1990,7,
`

func newFixtureReader(t *testing.T, normalize *bool) *Reader {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/record", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"files":[
			{"key":"readme.md","links":{"self":"%s/files/readme.md"}},
			{"key":"data.csv","links":{"self":"%s/files/data.csv"}}
		]}`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/files/data.csv", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(fixtureCSV))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	r, err := NewReader(context.Background(), srv.URL+"/record", normalize)
	require.NoError(t, err)
	return r
}

func TestReaderLoadsBulkRows(t *testing.T) {
	r := newFixtureReader(t, nil)

	codes := make([]string, 0, len(r.Parties()))
	for _, p := range r.Parties() {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{"DEU", "MMR"}, codes)
	assert.Len(t, r.Gases(), 2)
}

func TestReaderQueryNormalizesNames(t *testing.T) {
	r := newFixtureReader(t, nil)

	// the ASCII spelling finds the natively spelled gas
	rows, err := r.Query(context.Background(), flexquery.QueryOpts{
		PartyCodes: []string{"DEU"},
		Gases:      []string{"N2O"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "N2O", rows[0].Gas)
	assert.Equal(t, "kt", rows[0].Unit)
	require.NotNil(t, rows[0].NumberValue)
	assert.Equal(t, 1.5, *rows[0].NumberValue)

	off := false
	rows, err = r.Query(context.Background(), flexquery.QueryOpts{
		PartyCodes:        []string{"DEU"},
		Gases:             []string{"N₂O"},
		NormalizeGasNames: &off,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "N₂O", rows[0].Gas)
}

func TestReaderQueryErrors(t *testing.T) {
	r := newFixtureReader(t, nil)

	_, err := r.Query(context.Background(), flexquery.QueryOpts{PartyCodes: []string{"ASDF"}})
	var unknownParty *flexquery.UnknownPartyError
	require.ErrorAs(t, err, &unknownParty)
	assert.Equal(t, "ASDF", unknownParty.PartyCode)

	_, err = r.Query(context.Background(), flexquery.QueryOpts{
		PartyCodes:      []string{"MMR"},
		Classifications: []string{"Does not exist"},
	})
	var noData *flexquery.NoDataError
	require.ErrorAs(t, err, &noData)

	_, err = r.Query(context.Background(), flexquery.QueryOpts{
		PartyCodes:  []string{"MMR"},
		CategoryIDs: []int64{1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestReaderStringValues(t *testing.T) {
	r := newFixtureReader(t, nil)

	rows, err := r.Query(context.Background(), flexquery.QueryOpts{
		PartyCodes: []string{"DEU"},
		Gases:      []string{"CO2"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].NumberValue)
	require.NotNil(t, rows[0].StringValue)
	assert.Equal(t, "NO", *rows[0].StringValue)
	assert.Equal(t, "kt CO2 equivalent", rows[0].Unit)
}
