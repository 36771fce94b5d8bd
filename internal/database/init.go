package database

import (
	"context"
	"fmt"

	"github.com/wanwanbooboo/boatrace/internal/config"
)

// Schema bootstrap statements. odds_ticks is an append-only log of market
// observations; one snapshot is the set of rows sharing
// (race_id, bet_type, snapshot_ts). orders carries the idempotent ledger,
// deduplicated by the unique idempotency_key.
var bootstrapStatements = []string{
	`CREATE TABLE IF NOT EXISTS odds_ticks (
		race_id     TEXT        NOT NULL,
		bet_type    TEXT        NOT NULL,
		selection   TEXT        NOT NULL,
		odds        NUMERIC     NOT NULL,
		snapshot_ts TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_odds_ticks_stream
		ON odds_ticks (race_id, bet_type, snapshot_ts)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id              BIGSERIAL   PRIMARY KEY,
		race_id         TEXT        NOT NULL,
		bet_type        TEXT        NOT NULL,
		selection       TEXT        NOT NULL,
		amount          BIGINT      NOT NULL CHECK (amount > 0),
		status          TEXT        NOT NULL DEFAULT 'requested',
		idempotency_key TEXT        NOT NULL UNIQUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_race
		ON orders (race_id, bet_type)`,
}

// Initialize creates a database connection pool and applies the schema
// bootstrap. Statements are idempotent so repeated startups are safe.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the bootstrap DDL.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range bootstrapStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema bootstrap: %w", err)
		}
	}
	return nil
}
