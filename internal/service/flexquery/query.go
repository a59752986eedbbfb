package flexquery

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/domain/dto"
	"github.com/climatedata/unfcccdi/internal/pkg/logger"
)

const (
	// DefaultBatchSize is the number of variable IDs sent in one
	// flexible-queries POST. Larger requests have been seen to trip
	// internal server errors upstream.
	DefaultBatchSize = 1000

	// variableCountWarnThreshold triggers a log hint that the query may be
	// too broad for the upstream to handle in one go.
	variableCountWarnThreshold = 3000

	maxParallelBatches = 4
)

// QueryOpts restricts a query. Nil slices mean "all values of that
// dimension". Gases accepts both native spellings ("N₂O") and their ASCII
// transliterations ("N2O"). NormalizeGasNames overrides the reader-level
// default when set.
type QueryOpts struct {
	PartyCodes        []string
	CategoryIDs       []int64
	Classifications   []string
	MeasureIDs        []int64
	Gases             []string
	NormalizeGasNames *bool
}

// Query runs a flexible query against this party group and returns the
// fully resolved rows, sorted by party, category, classification,
// measure, gas, unit and year.
//
// A party code outside this group yields an UnknownPartyError; a filter
// combination matching nothing yields a NoDataError.
func (r *SingleGroupReader) Query(ctx context.Context, opts QueryOpts) ([]domain.Row, error) {
	if len(opts.PartyCodes) == 0 {
		return nil, fmt.Errorf("at least one party code is required")
	}

	partyIDs := make([]int64, 0, len(opts.PartyCodes))
	for _, code := range opts.PartyCodes {
		party, ok := r.zones.PartyByCode(code)
		if !ok {
			return nil, &UnknownPartyError{PartyCode: code}
		}
		partyIDs = append(partyIDs, party.ID)
	}

	variableIDs, err := r.selectVariableIDs(opts)
	if err != nil {
		return nil, err
	}
	if len(variableIDs) == 0 {
		return nil, &NoDataError{PartyCodes: opts.PartyCodes}
	}
	if len(variableIDs) > variableCountWarnThreshold {
		logger.Warnf(ctx, "query selects %d variables at once; restrict the query if the upstream rejects it", len(variableIDs))
	}

	raw, err := r.fetchBatched(ctx, variableIDs, partyIDs)
	if err != nil {
		return nil, err
	}

	rows := r.parseRows(ctx, raw, r.normalizeEnabled(opts))
	if len(rows) == 0 {
		return nil, &NoDataError{PartyCodes: opts.PartyCodes}
	}
	return rows, nil
}

func (r *SingleGroupReader) normalizeEnabled(opts QueryOpts) bool {
	if opts.NormalizeGasNames != nil {
		return *opts.NormalizeGasNames
	}
	return r.normalizeDefault
}

// selectVariableIDs filters the variable table: OR within one dimension,
// AND across dimensions. The returned IDs are unique and keep upstream
// order; instances repeating an ID are folded into one request entry and
// re-expanded during parsing.
func (r *SingleGroupReader) selectVariableIDs(opts QueryOpts) ([]int64, error) {
	classIDs, err := r.resolveClassifications(opts.Classifications)
	if err != nil {
		return nil, err
	}
	gasIDs, err := r.resolveGases(opts.Gases)
	if err != nil {
		return nil, err
	}
	categoryIDs := toSet(opts.CategoryIDs)
	measureIDs := toSet(opts.MeasureIDs)

	seen := make(map[int64]bool)
	var ids []int64
	for _, v := range r.zones.Variables {
		if classIDs != nil && !classIDs[v.ClassificationID] {
			continue
		}
		if categoryIDs != nil && !categoryIDs[v.CategoryID] {
			continue
		}
		if measureIDs != nil && !measureIDs[v.MeasureID] {
			continue
		}
		if gasIDs != nil && !gasIDs[v.GasID] {
			continue
		}
		if !seen[v.VariableID] {
			seen[v.VariableID] = true
			ids = append(ids, v.VariableID)
		}
	}
	return ids, nil
}

func (r *SingleGroupReader) resolveClassifications(names []string) (map[int64]bool, error) {
	if names == nil {
		return nil, nil
	}
	set := make(map[int64]bool, len(names))
	for _, name := range names {
		id, ok := r.zones.ClassificationID(name)
		if !ok {
			return nil, fmt.Errorf("unknown classification %q, try Reader.Classifications() for valid names", name)
		}
		set[id] = true
	}
	return set, nil
}

func (r *SingleGroupReader) resolveGases(names []string) (map[int64]bool, error) {
	if names == nil {
		return nil, nil
	}
	set := make(map[int64]bool, len(names))
	for _, name := range names {
		id, ok := r.zones.GasID(name)
		if !ok {
			return nil, fmt.Errorf("unknown gas %q, try Reader.Gases() for valid names", name)
		}
		set[id] = true
	}
	return set, nil
}

func toSet(ids []int64) map[int64]bool {
	if ids == nil {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// fetchBatched splits the variable IDs into batches and runs the
// flexible-queries POSTs with bounded parallelism. All years are always
// queried.
func (r *SingleGroupReader) fetchBatched(ctx context.Context, variableIDs, partyIDs []int64) ([]dto.RawDataPoint, error) {
	yearIDs := r.zones.yearIDs()

	var (
		mu  sync.Mutex
		raw []dto.RawDataPoint
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelBatches)
	for start := 0; start < len(variableIDs); start += r.batchSize {
		end := start + r.batchSize
		if end > len(variableIDs) {
			end = len(variableIDs)
		}
		batch := variableIDs[start:end]

		eg.Go(func() error {
			var points []dto.RawDataPoint
			err := r.client.postJSON(egCtx, "records/flexible-queries", dto.FlexibleQueryRequest{
				VariableIDs: batch,
				PartyIDs:    partyIDs,
				YearIDs:     yearIDs,
			}, &points)
			if err != nil {
				return fmt.Errorf("flexible query batch of %d variables: %w", len(batch), err)
			}

			mu.Lock()
			defer mu.Unlock()
			raw = append(raw, points...)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// parseRows resolves raw data points against the zone snapshot. Each
// point is joined against every variable instance sharing its variable
// ID: a variable selected through one of its categories therefore
// contributes rows for all categories it spans, never a partial set.
func (r *SingleGroupReader) parseRows(ctx context.Context, raw []dto.RawDataPoint, normalize bool) []domain.Row {
	rows := make([]domain.Row, 0, len(raw))
	for _, dp := range raw {
		instances := r.zones.varsByID[dp.VariableID]
		if len(instances) == 0 {
			logger.Warnf(ctx, "response references variable %d which is not in the variable table, skipping", dp.VariableID)
			continue
		}
		for _, v := range instances {
			rows = append(rows, r.resolveRow(dp, v, normalize))
		}
	}

	sortRows(rows)
	return dedupeRows(rows)
}

func (r *SingleGroupReader) resolveRow(dp dto.RawDataPoint, v domain.Variable, normalize bool) domain.Row {
	category, ok := r.zones.Categories.Name(v.CategoryID)
	if !ok {
		category = fmt.Sprintf("unknown category nr. %d", v.CategoryID)
	}
	measure, ok := r.zones.Measures.Name(v.MeasureID)
	if !ok {
		measure = fmt.Sprintf("unknown measure nr. %d", v.MeasureID)
	}
	classification, ok := r.zones.classByID[v.ClassificationID]
	if !ok {
		classification = fmt.Sprintf("unknown classification nr. %d", v.ClassificationID)
	}

	gas := r.zones.gasByID[v.GasID]
	unit := r.zones.unitByID[v.UnitID]
	if normalize {
		gas = NormalizeName(gas)
		unit = NormalizeName(unit)
	}

	return domain.Row{
		Party:          r.zones.partyByID[dp.PartyID].Code,
		Category:       category,
		Classification: classification,
		Measure:        measure,
		Gas:            gas,
		Unit:           unit,
		Year:           r.zones.yearByID[dp.YearID],
		NumberValue:    dp.NumberValue,
		StringValue:    dp.StringValue,
	}
}

func sortRows(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Party != b.Party {
			return a.Party < b.Party
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Classification != b.Classification {
			return a.Classification < b.Classification
		}
		if a.Measure != b.Measure {
			return a.Measure < b.Measure
		}
		if a.Gas != b.Gas {
			return a.Gas < b.Gas
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.Year < b.Year
	})
}

type rowKey struct {
	party, category, classification, measure, gas, unit, year string
	number                                                    float64
	hasNumber                                                 bool
	str                                                       string
	hasStr                                                    bool
}

func dedupeRows(rows []domain.Row) []domain.Row {
	seen := make(map[rowKey]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := rowKey{
			party:          row.Party,
			category:       row.Category,
			classification: row.Classification,
			measure:        row.Measure,
			gas:            row.Gas,
			unit:           row.Unit,
			year:           row.Year,
		}
		if row.NumberValue != nil {
			key.number, key.hasNumber = *row.NumberValue, true
		}
		if row.StringValue != nil {
			key.str, key.hasStr = *row.StringValue, true
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
