package controller

import (
	"context"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/store"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

// QuerySource is the high-level query interface served by this API. Both
// the live flexquery.Reader and the zenodo bulk Reader satisfy it; which
// one is wired up is a deployment decision.
type QuerySource interface {
	Query(ctx context.Context, opts flexquery.QueryOpts) ([]domain.Row, error)
	Parties() []domain.Party
	Gases() []domain.GasInfo
}

type Controller struct {
	source QuerySource
	store  store.Store
}

func NewController(source QuerySource, st store.Store) *Controller {
	return &Controller{source: source, store: st}
}
