package store

import (
	"context"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	InsertSnapshot(ctx context.Context, partyCode, source string, rows []domain.Row) (*domain.Snapshot, error)
	LatestByParty(ctx context.Context, partyCode string) (*domain.Snapshot, []domain.Row, error)
	ListSnapshots(ctx context.Context) ([]*domain.Snapshot, error)
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}
