package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	// OrderStatusRequested is the initial status assigned by the ledger.
	// Later transitions belong to the execution flow, never to this core.
	OrderStatusRequested OrderStatus = "requested"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ExecutionMode controls what the downstream execution flow does with
// requested orders. The pricing core only threads it through to responses.
type ExecutionMode string

const (
	ModeDryRun ExecutionMode = "dryrun"
	ModeManual ExecutionMode = "manual"
	ModeAuto   ExecutionMode = "auto"
)

// Candidate is a priced betting opportunity derived from one snapshot.
// Candidates are constructed fresh per pricing request and are never
// persisted directly; only their projection into an Order is.
type Candidate struct {
	Selection   string          `json:"selection"`
	Probability float64         `json:"p"`
	Odds        decimal.Decimal `json:"odds"`
	EV          float64         `json:"ev"`
	Stake       int64           `json:"stake"`
}

// Order is a durable record of an intent to place a bet.
type Order struct {
	ID             int64       `db:"id" json:"id"`
	RaceID         string      `db:"race_id" json:"race_id" validate:"required"`
	BetType        string      `db:"bet_type" json:"bet_type" validate:"required"`
	Selection      string      `db:"selection" json:"selection" validate:"required"`
	Amount         int64       `db:"amount" json:"amount" validate:"required,gt=0"`
	Status         OrderStatus `db:"status" json:"status" validate:"required"`
	IdempotencyKey string      `db:"idempotency_key" json:"idempotency_key"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// SubmissionResult reports the per-candidate outcome of one ledger submit.
type SubmissionResult struct {
	Selection string `json:"selection"`
	Amount    int64  `json:"amount"`
	Inserted  bool   `json:"inserted"`
	OrderID   *int64 `json:"order_id"`
	Reason    string `json:"reason,omitempty"`
}

// Submission reasons for non-inserted results.
const (
	ReasonDuplicate         = "duplicate"
	ReasonNonPositiveAmount = "amount<=0"
)

// IdempotencyKey derives the deduplication digest for one order intent.
// Encoding v1: sha256 over pipe-joined fields with the snapshot timestamp
// canonicalized to UTC RFC3339Nano. Field order and encoding are part of
// the deduplication contract; changing either is a breaking change.
func IdempotencyKey(raceID, betType, selection string, amount int64, snapshotTS time.Time) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%s",
		raceID, betType, selection, amount,
		snapshotTS.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
