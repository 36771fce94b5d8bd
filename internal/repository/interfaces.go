package repository

import (
	"context"
	"time"

	"github.com/wanwanbooboo/boatrace/internal/models"
)

// TickRepository defines access to the append-only odds snapshot store.
type TickRepository interface {
	// Insert appends a single odds tick.
	Insert(ctx context.Context, tick *models.OddsTick) error
	// InsertBatch appends a batch of odds ticks.
	InsertBatch(ctx context.Context, ticks []*models.OddsTick) error
	// ResolveSnapshot returns the most recent snapshot_ts at or before asOf
	// for (raceID, betType). Returns models.ErrNotFound when none exists.
	ResolveSnapshot(ctx context.Context, raceID, betType string, asOf time.Time) (time.Time, error)
	// GetMarket returns the entries of one resolved snapshot ordered by
	// selection. Duplicate selections surface models.ErrDataQuality. An
	// empty market is valid and returns an empty slice, not an error.
	GetMarket(ctx context.Context, raceID, betType string, snapshotTS time.Time) (models.Market, error)
	// LastSnapshotTS returns the newest snapshot_ts for a stream, or the
	// zero time when the stream has no ticks yet.
	LastSnapshotTS(ctx context.Context, raceID, betType string) (time.Time, error)
}

// OrderRepository defines the idempotent order ledger.
type OrderRepository interface {
	// SubmitBatch records order intents for one pricing request. All insert
	// attempts run inside a single transaction; an unexpected store fault
	// rolls back the whole batch. Duplicates detected through the
	// idempotency_key uniqueness constraint are reported per candidate and
	// never trigger rollback.
	SubmitBatch(ctx context.Context, raceID, betType string, snapshotTS time.Time, candidates []models.Candidate) ([]models.SubmissionResult, error)
	// GetByRaceID returns the persisted orders for one race and bet type.
	GetByRaceID(ctx context.Context, raceID, betType string) ([]*models.Order, error)
}
