// Package zenodo reads the bulk dataset snapshot published on Zenodo. It
// answers the same query interface as the live Flexible Query reader and
// is meant as a drop-in fallback when the upstream API is unreachable.
package zenodo

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/logger"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

// DefaultRecordURL points at the published bulk snapshot record.
const DefaultRecordURL = "https://zenodo.org/api/records/4199622"

type recordPayload struct {
	Files []recordFile `json:"files"`
}

type recordFile struct {
	Key   string `json:"key"`
	Links struct {
		Self string `json:"self"`
	} `json:"links"`
}

// Reader serves queries from the bulk snapshot. Rows are kept with their
// native (non-ASCII) names; normalization is applied per query, exactly
// like the live reader does.
type Reader struct {
	rows             []domain.Row
	parties          []domain.Party
	partySet         map[string]bool
	gases            []domain.GasInfo
	gasAccept        map[string]string
	normalizeDefault bool
}

// NewReader resolves the Zenodo record, downloads the CSV asset and loads
// it fully into memory. The bulk file is a few hundred MB at most, which
// is the price of serving queries without the upstream.
func NewReader(ctx context.Context, recordURL string, normalizeGasNames *bool) (*Reader, error) {
	if recordURL == "" {
		recordURL = DefaultRecordURL
	}

	fileURL, err := resolveCSVLink(ctx, recordURL)
	if err != nil {
		return nil, fmt.Errorf("zenodo.NewReader: %w", err)
	}

	rows, err := downloadRows(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("zenodo.NewReader: %w", err)
	}
	logger.Infof(ctx, "loaded %d bulk rows from zenodo", len(rows))

	r := &Reader{
		rows:             rows,
		partySet:         make(map[string]bool),
		gasAccept:        make(map[string]string),
		normalizeDefault: true,
	}
	if normalizeGasNames != nil {
		r.normalizeDefault = *normalizeGasNames
	}
	r.index()
	return r, nil
}

func resolveCSVLink(ctx context.Context, recordURL string) (string, error) {
	var record recordPayload
	if err := fetchJSON(ctx, recordURL, &record); err != nil {
		return "", err
	}

	for _, f := range record.Files {
		if strings.HasSuffix(f.Key, ".csv") {
			return f.Links.Self, nil
		}
	}
	return "", fmt.Errorf("record %s carries no csv asset", recordURL)
}

func fetchJSON(ctx context.Context, url string, out interface{}) error {
	var raw []byte
	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(err)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("http.Get: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}

			raw, err = io.ReadAll(resp.Body)
			return err
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 5),
			ctx,
		),
	)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}

	return sonic.Unmarshal(raw, out)
}

// downloadRows streams the CSV asset. Expected header: party, category,
// classification, measure, gas, unit, year, numberValue, stringValue.
func downloadRows(ctx context.Context, fileURL string) ([]domain.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http.Get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = 9

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if header[0] != "party" {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	var rows []domain.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		row := domain.Row{
			Party:          record[0],
			Category:       record[1],
			Classification: record[2],
			Measure:        record[3],
			Gas:            record[4],
			Unit:           record[5],
			Year:           record[6],
		}
		if record[7] != "" {
			v, err := strconv.ParseFloat(record[7], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing numberValue %q: %w", record[7], err)
			}
			row.NumberValue = &v
		}
		if record[8] != "" {
			s := record[8]
			row.StringValue = &s
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Reader) index() {
	gasSeen := make(map[string]bool)
	for _, row := range r.rows {
		if !r.partySet[row.Party] {
			r.partySet[row.Party] = true
			r.parties = append(r.parties, domain.Party{
				ID:   int64(len(r.parties)),
				Code: row.Party,
				Name: row.Party,
			})
		}
		if !gasSeen[row.Gas] {
			gasSeen[row.Gas] = true
			r.gases = append(r.gases, domain.GasInfo{ID: int64(len(r.gases)), Name: row.Gas})
			r.gasAccept[row.Gas] = row.Gas
			r.gasAccept[flexquery.NormalizeName(row.Gas)] = row.Gas
		}
	}
	sort.Slice(r.parties, func(i, j int) bool { return r.parties[i].Code < r.parties[j].Code })
}

func (r *Reader) Parties() []domain.Party {
	return r.parties
}

func (r *Reader) Gases() []domain.GasInfo {
	return r.gases
}

// Query filters the bulk rows. The snapshot carries resolved names only,
// so the ID-based category and measure filters of the live reader are not
// supported here.
func (r *Reader) Query(_ context.Context, opts flexquery.QueryOpts) ([]domain.Row, error) {
	if len(opts.PartyCodes) == 0 {
		return nil, fmt.Errorf("at least one party code is required")
	}
	if len(opts.CategoryIDs) > 0 || len(opts.MeasureIDs) > 0 {
		return nil, fmt.Errorf("category and measure ID filters are not supported by the bulk reader")
	}

	wantParty := make(map[string]bool, len(opts.PartyCodes))
	for _, code := range opts.PartyCodes {
		if !r.partySet[code] {
			return nil, &flexquery.UnknownPartyError{PartyCode: code}
		}
		wantParty[code] = true
	}

	var wantGas map[string]bool
	if opts.Gases != nil {
		wantGas = make(map[string]bool, len(opts.Gases))
		for _, name := range opts.Gases {
			native, ok := r.gasAccept[name]
			if !ok {
				return nil, fmt.Errorf("unknown gas %q, try Reader.Gases() for valid names", name)
			}
			wantGas[native] = true
		}
	}

	var wantClass map[string]bool
	if opts.Classifications != nil {
		wantClass = make(map[string]bool, len(opts.Classifications))
		for _, name := range opts.Classifications {
			wantClass[name] = true
		}
	}

	normalize := r.normalizeDefault
	if opts.NormalizeGasNames != nil {
		normalize = *opts.NormalizeGasNames
	}

	var out []domain.Row
	for _, row := range r.rows {
		if !wantParty[row.Party] {
			continue
		}
		if wantGas != nil && !wantGas[row.Gas] {
			continue
		}
		if wantClass != nil && !wantClass[row.Classification] {
			continue
		}

		if normalize {
			row.Gas = flexquery.NormalizeName(row.Gas)
			row.Unit = flexquery.NormalizeName(row.Unit)
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, &flexquery.NoDataError{PartyCodes: opts.PartyCodes}
	}
	return out, nil
}
