package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OddsTick represents one observed price for one selection at one instant.
// The set of ticks sharing (race_id, bet_type, snapshot_ts) forms one
// immutable snapshot; snapshots are append-only and totally ordered by
// snapshot_ts within a (race_id, bet_type) stream.
type OddsTick struct {
	RaceID     string          `db:"race_id" json:"race_id" validate:"required"`
	BetType    string          `db:"bet_type" json:"bet_type" validate:"required"`
	Selection  string          `db:"selection" json:"selection" validate:"required"`
	Odds       decimal.Decimal `db:"odds" json:"odds"`
	SnapshotTS time.Time       `db:"snapshot_ts" json:"snapshot_ts" validate:"required"`
}

// MarketEntry is one (selection, odds) pair inside a resolved snapshot.
type MarketEntry struct {
	Selection string          `json:"selection"`
	Odds      decimal.Decimal `json:"odds"`
}

// Market is the full set of entries of one resolved snapshot, ordered by
// selection. An empty market is valid (e.g. a withdrawn race).
type Market []MarketEntry

// OddsFloat returns the odds as a float64 for probability computation.
// Non-positive odds carry zero weight downstream, they are never an error.
func (e MarketEntry) OddsFloat() float64 {
	return e.Odds.InexactFloat64()
}

// Selections returns the selection identifiers in market order.
func (m Market) Selections() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Selection
	}
	return out
}
