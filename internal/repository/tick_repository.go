package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wanwanbooboo/boatrace/internal/database"
	"github.com/wanwanbooboo/boatrace/internal/models"
)

// PostgresTickRepository implements TickRepository for PostgreSQL
type PostgresTickRepository struct {
	db *database.DB
}

// NewPostgresTickRepository creates a new tick repository
func NewPostgresTickRepository(db *database.DB) TickRepository {
	return &PostgresTickRepository{db: db}
}

// Insert appends a single odds tick
func (r *PostgresTickRepository) Insert(ctx context.Context, tick *models.OddsTick) error {
	query := `
		INSERT INTO odds_ticks (race_id, bet_type, selection, odds, snapshot_ts)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		tick.RaceID, tick.BetType, tick.Selection, tick.Odds, tick.SnapshotTS,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert odds tick: %v", models.ErrStoreFault, err)
	}

	return nil
}

// InsertBatch appends multiple odds ticks using high-performance batch insert
func (r *PostgresTickRepository) InsertBatch(ctx context.Context, ticks []*models.OddsTick) error {
	if len(ticks) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"race_id", "bet_type", "selection", "odds", "snapshot_ts"}

	copyFromSource := make([][]interface{}, len(ticks))
	for i, t := range ticks {
		copyFromSource[i] = []interface{}{
			t.RaceID, t.BetType, t.Selection, t.Odds, t.SnapshotTS,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_ticks"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("%w: failed to batch insert odds ticks: %v", models.ErrStoreFault, err)
	}

	if count != int64(len(ticks)) {
		return fmt.Errorf("%w: inserted %d rows, expected %d", models.ErrStoreFault, count, len(ticks))
	}

	return nil
}

// ResolveSnapshot selects max(snapshot_ts) at or before asOf. This is a pure
// read against immutable data: repeated calls against an unchanged store
// return the same result.
func (r *PostgresTickRepository) ResolveSnapshot(ctx context.Context, raceID, betType string, asOf time.Time) (time.Time, error) {
	query := `
		SELECT MAX(snapshot_ts)
		FROM odds_ticks
		WHERE race_id = $1 AND bet_type = $2 AND snapshot_ts <= $3
	`

	var snapshotTS *time.Time
	err := r.db.GetPool().QueryRow(ctx, query, raceID, betType, asOf).Scan(&snapshotTS)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to resolve snapshot: %v", models.ErrStoreFault, err)
	}
	if snapshotTS == nil {
		return time.Time{}, fmt.Errorf("%w: no odds snapshot at or before %s for race=%s bet_type=%s",
			models.ErrNotFound, asOf.Format(time.RFC3339), raceID, betType)
	}

	return *snapshotTS, nil
}

// GetMarket returns exactly the ticks belonging to the resolved snapshot,
// ordered by selection. Duplicate selections indicate an upstream feed
// defect and are surfaced, never merged.
func (r *PostgresTickRepository) GetMarket(ctx context.Context, raceID, betType string, snapshotTS time.Time) (models.Market, error) {
	query := `
		SELECT selection, odds
		FROM odds_ticks
		WHERE race_id = $1 AND bet_type = $2 AND snapshot_ts = $3
		ORDER BY selection ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID, betType, snapshotTS)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query market: %v", models.ErrStoreFault, err)
	}
	defer rows.Close()

	market := models.Market{}
	seen := make(map[string]struct{})
	for rows.Next() {
		var entry models.MarketEntry
		if err := rows.Scan(&entry.Selection, &entry.Odds); err != nil {
			return nil, fmt.Errorf("%w: failed to scan market entry: %v", models.ErrStoreFault, err)
		}
		if _, dup := seen[entry.Selection]; dup {
			return nil, fmt.Errorf("%w: duplicate selection %q in snapshot %s for race=%s bet_type=%s",
				models.ErrDataQuality, entry.Selection, snapshotTS.Format(time.RFC3339), raceID, betType)
		}
		seen[entry.Selection] = struct{}{}
		market = append(market, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read market rows: %v", models.ErrStoreFault, err)
	}

	return market, nil
}

// LastSnapshotTS returns the newest snapshot_ts for one stream
func (r *PostgresTickRepository) LastSnapshotTS(ctx context.Context, raceID, betType string) (time.Time, error) {
	query := `
		SELECT MAX(snapshot_ts)
		FROM odds_ticks
		WHERE race_id = $1 AND bet_type = $2
	`

	var snapshotTS *time.Time
	err := r.db.GetPool().QueryRow(ctx, query, raceID, betType).Scan(&snapshotTS)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to query last snapshot: %v", models.ErrStoreFault, err)
	}
	if snapshotTS == nil {
		return time.Time{}, nil
	}

	return *snapshotTS, nil
}
