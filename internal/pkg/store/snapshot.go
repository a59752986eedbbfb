package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/pkg/logger"
	"github.com/climatedata/unfcccdi/internal/pkg/store/xpgx"
)

var (
	snapshotColumns = []string{"id", "party_code", "source", "created_at"}
	recordColumns   = []string{"party", "category", "classification", "measure", "gas", "unit", "year", "number_value", "string_value"}
)

// recordInsertChunk bounds the multi-values insert size; a full party
// snapshot can run into hundreds of thousands of rows.
const recordInsertChunk = 500

func (s *store) InsertSnapshot(ctx context.Context, partyCode, source string, rows []domain.Row) (*domain.Snapshot, error) {
	id := uuid.New()

	query := builder().Insert(tableSnapshots).
		Columns("id", "party_code", "source").
		Values(id, partyCode, source)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Errorf(ctx, "insertSnapshot: %s", err.Error())
		return nil, fmt.Errorf("insertSnapshot: %w", wrapErr(err))
	}

	for start := 0; start < len(rows); start += recordInsertChunk {
		end := start + recordInsertChunk
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.insertRecords(ctx, id, rows[start:end]); err != nil {
			logger.Errorf(ctx, "insertRecords: %s", err.Error())
			return nil, fmt.Errorf("insertRecords, snapshot-%s: %w", id, wrapErr(err))
		}
	}

	selectQuery := builder().Select(snapshotColumns...).
		From(tableSnapshots).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Get[domain.Snapshot](ctx, s.pool, selectQuery)
	if err != nil {
		return nil, fmt.Errorf("selectSnapshot: %w", wrapErr(err))
	}

	return &selected, nil
}

func (s *store) insertRecords(ctx context.Context, snapshotID uuid.UUID, rows []domain.Row) error {
	query := builder().Insert(tableSnapshotRecords).
		Columns(append([]string{"snapshot_id"}, recordColumns...)...)

	for _, row := range rows {
		query = query.Values(
			snapshotID,
			row.Party,
			row.Category,
			row.Classification,
			row.Measure,
			row.Gas,
			row.Unit,
			row.Year,
			row.NumberValue,
			row.StringValue,
		)
	}

	_, err := s.pool.Execx(ctx, query)
	return err
}

func (s *store) LatestByParty(ctx context.Context, partyCode string) (*domain.Snapshot, []domain.Row, error) {
	query := builder().Select(snapshotColumns...).
		From(tableSnapshots).
		Where(sq.Eq{"party_code": partyCode}).
		OrderBy("created_at desc").
		Limit(1)

	snapshot, err := xpgx.Get[domain.Snapshot](ctx, s.pool, query)
	if err != nil {
		return nil, nil, fmt.Errorf("selectSnapshot, party-%s: %w", partyCode, wrapErr(err))
	}

	recordsQuery := builder().Select(recordColumns...).
		From(tableSnapshotRecords).
		Where(sq.Eq{"snapshot_id": snapshot.ID}).
		OrderBy("party, category, classification, measure, gas, unit, year")

	rows, err := xpgx.Select[domain.Row](ctx, s.pool, recordsQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("selectRecords, snapshot-%s: %w", snapshot.ID, wrapErr(err))
	}

	return &snapshot, rows, nil
}

func (s *store) ListSnapshots(ctx context.Context) ([]*domain.Snapshot, error) {
	query := builder().Select(snapshotColumns...).
		From(tableSnapshots).
		OrderBy("created_at desc")

	selected, err := xpgx.Select[*domain.Snapshot](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("listSnapshots: %w", wrapErr(err))
	}

	return selected, nil
}
