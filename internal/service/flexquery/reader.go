// Package flexquery reads the UNFCCC Flexible Query API: it bootstraps
// the dimension data of a party group once, then turns filtered queries
// into flat, name-resolved rows.
package flexquery

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/climatedata/unfcccdi/internal/domain"
)

// Config carries the reader knobs; the zero value picks the production
// base URL, the default batch size and gas-name normalization on.
type Config struct {
	BaseURL           string
	BatchSize         int
	NormalizeGasNames *bool
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) normalizeDefault() bool {
	if c.NormalizeGasNames != nil {
		return *c.NormalizeGasNames
	}
	return true
}

// SingleGroupReader queries one party group (annexOne or nonAnnexOne).
// Use it directly for fine-grained filters; Reader wraps both groups for
// the common single-party case.
type SingleGroupReader struct {
	client           *Client
	zones            *Zones
	converter        *Converter
	normalizeDefault bool
	batchSize        int
}

func NewSingleGroupReader(ctx context.Context, cfg Config, group PartyGroup) (*SingleGroupReader, error) {
	client := NewClient(cfg.BaseURL)
	zones, err := loadZones(ctx, client, group)
	if err != nil {
		return nil, err
	}

	return &SingleGroupReader{
		client:           client,
		zones:            zones,
		converter:        newConverter(zones.Factors),
		normalizeDefault: cfg.normalizeDefault(),
		batchSize:        cfg.batchSize(),
	}, nil
}

func (r *SingleGroupReader) Zones() *Zones {
	return r.zones
}

func (r *SingleGroupReader) Converter() *Converter {
	return r.converter
}

// CategoryHierarchy renders the category tree with IDs for discovering
// filter values.
func (r *SingleGroupReader) CategoryHierarchy() string {
	return r.zones.Categories.Render()
}

// MeasureHierarchy renders the measure forest with IDs.
func (r *SingleGroupReader) MeasureHierarchy() string {
	return r.zones.Measures.Render()
}

// Reader unifies the annexOne and nonAnnexOne readers so callers do not
// need to know a party's reporting regime.
type Reader struct {
	AnnexOne    *SingleGroupReader
	NonAnnexOne *SingleGroupReader

	parties []domain.Party
	gases   []domain.GasInfo
}

func NewReader(ctx context.Context, cfg Config) (*Reader, error) {
	r := &Reader{}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		r.AnnexOne, err = NewSingleGroupReader(egCtx, cfg, AnnexOne)
		return err
	})
	eg.Go(func() error {
		var err error
		r.NonAnnexOne, err = NewSingleGroupReader(egCtx, cfg, NonAnnexOne)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("flexquery.NewReader: %w", err)
	}

	r.parties = append(r.parties, r.AnnexOne.zones.Parties...)
	r.parties = append(r.parties, r.NonAnnexOne.zones.Parties...)
	sort.Slice(r.parties, func(i, j int) bool { return r.parties[i].ID < r.parties[j].ID })

	// both groups list mostly the same gases; keep the first occurrence
	// per ID
	seen := make(map[int64]bool)
	for _, g := range append(append([]domain.GasInfo{}, r.AnnexOne.zones.Gases...), r.NonAnnexOne.zones.Gases...) {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		r.gases = append(r.gases, g)
	}
	sort.Slice(r.gases, func(i, j int) bool { return r.gases[i].ID < r.gases[j].ID })

	return r, nil
}

func (r *Reader) Parties() []domain.Party {
	return r.parties
}

func (r *Reader) Gases() []domain.GasInfo {
	return r.gases
}

// Query dispatches to the group that knows the queried party. All party
// codes of one call must belong to the same group; the first code decides
// which group that is.
func (r *Reader) Query(ctx context.Context, opts QueryOpts) ([]domain.Row, error) {
	if len(opts.PartyCodes) == 0 {
		return nil, fmt.Errorf("at least one party code is required")
	}

	code := opts.PartyCodes[0]
	if _, ok := r.AnnexOne.zones.PartyByCode(code); ok {
		return r.AnnexOne.Query(ctx, opts)
	}
	if _, ok := r.NonAnnexOne.zones.PartyByCode(code); ok {
		return r.NonAnnexOne.Query(ctx, opts)
	}
	return nil, &UnknownPartyError{PartyCode: code}
}
