package state

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canopyhq/pos-sync-server/internal/db/sqlc"
	"github.com/canopyhq/pos-sync-server/internal/status"
)

// dbRunStore writes run mutations to the sync_run table.
type dbRunStore struct {
	q *sqlc.Queries
}

// NewDBRunStore creates a RunStore backed by the given pool.
func NewDBRunStore(pool *pgxpool.Pool) RunStore {
	return &dbRunStore{q: sqlc.New(pool)}
}

func (s *dbRunStore) InsertRun(ctx context.Context, run *status.SyncRun) error {
	return s.q.InsertSyncRun(ctx, sqlc.InsertSyncRunParams{
		ID:          run.ID,
		ScopeKind:   string(run.Scope.Kind),
		OrgID:       run.Scope.OrgID,
		LocationID:  run.Scope.LocationID,
		InitiatedBy: run.InitiatedBy,
		Status:      string(run.Status),
		Message:     run.Message,
		ItemCount:   int64(run.ItemCount),
		CreatedAt:   run.Created,
		UpdatedAt:   run.Modified,
	})
}

func (s *dbRunStore) UpdateRun(ctx context.Context, run *status.SyncRun) error {
	return s.q.UpdateSyncRun(ctx, sqlc.UpdateSyncRunParams{
		ID:        run.ID,
		Status:    string(run.Status),
		Message:   run.Message,
		ItemCount: int64(run.ItemCount),
		UpdatedAt: run.Modified,
	})
}

// LoadRecentRuns reads the most recent runs from the audit table, oldest
// first, so a restarted server can serve run history right away.
func LoadRecentRuns(ctx context.Context, pool *pgxpool.Pool, limit int) ([]*status.SyncRun, error) {
	rows, err := sqlc.New(pool).ListRecentSyncRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	// the query returns newest first
	runs := make([]*status.SyncRun, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		runs = append(runs, &status.SyncRun{
			ID: row.ID,
			Scope: status.Scope{
				Kind:       status.ScopeKind(row.ScopeKind),
				OrgID:      row.OrgID,
				LocationID: row.LocationID,
			},
			InitiatedBy: row.InitiatedBy,
			Status:      status.RunPhase(row.Status),
			Message:     row.Message,
			ItemCount:   int(row.ItemCount),
			Created:     row.CreatedAt,
			Modified:    row.UpdatedAt,
		})
	}
	return runs, nil
}
