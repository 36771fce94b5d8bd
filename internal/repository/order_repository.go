package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wanwanbooboo/boatrace/internal/database"
	"github.com/wanwanbooboo/boatrace/internal/models"
)

// PostgresOrderRepository implements OrderRepository for PostgreSQL
type PostgresOrderRepository struct {
	db *database.DB
}

// NewPostgresOrderRepository creates a new order repository
func NewPostgresOrderRepository(db *database.DB) OrderRepository {
	return &PostgresOrderRepository{db: db}
}

const insertOrderSQL = `
	INSERT INTO orders (race_id, bet_type, selection, amount, status, idempotency_key)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (idempotency_key) DO NOTHING
	RETURNING id
`

// SubmitBatch records order intents exactly once per idempotency key.
// Candidates with a non-positive stake are reported as skipped without
// touching the store. All insert attempts run inside one transaction;
// an unexpected store fault rolls the whole batch back. A conflicting
// idempotency_key is not a fault: the insert is a no-op and the result
// reports inserted=false with reason "duplicate".
func (r *PostgresOrderRepository) SubmitBatch(
	ctx context.Context,
	raceID, betType string,
	snapshotTS time.Time,
	candidates []models.Candidate,
) ([]models.SubmissionResult, error) {
	results := make([]models.SubmissionResult, 0, len(candidates))

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, c := range candidates {
			if c.Stake <= 0 {
				results = append(results, models.SubmissionResult{
					Selection: c.Selection,
					Amount:    c.Stake,
					Inserted:  false,
					Reason:    models.ReasonNonPositiveAmount,
				})
				continue
			}

			key := models.IdempotencyKey(raceID, betType, c.Selection, c.Stake, snapshotTS)

			var orderID int64
			err := tx.QueryRow(ctx, insertOrderSQL,
				raceID, betType, c.Selection, c.Stake, models.OrderStatusRequested, key,
			).Scan(&orderID)

			switch {
			case err == nil:
				id := orderID
				results = append(results, models.SubmissionResult{
					Selection: c.Selection,
					Amount:    c.Stake,
					Inserted:  true,
					OrderID:   &id,
				})
			case errors.Is(err, pgx.ErrNoRows):
				// An order with this idempotency key already exists.
				results = append(results, models.SubmissionResult{
					Selection: c.Selection,
					Amount:    c.Stake,
					Inserted:  false,
					Reason:    models.ReasonDuplicate,
				})
			default:
				return fmt.Errorf("%w: failed to insert order for selection %q: %v",
					models.ErrStoreFault, c.Selection, err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrStoreFault) {
			// Begin/commit failures are store faults too.
			return nil, fmt.Errorf("%w: %v", models.ErrStoreFault, err)
		}
		return nil, err
	}

	return results, nil
}

// GetByRaceID retrieves all persisted orders for one race and bet type,
// in insertion order.
func (r *PostgresOrderRepository) GetByRaceID(ctx context.Context, raceID, betType string) ([]*models.Order, error) {
	query := `
		SELECT id, race_id, bet_type, selection, amount, status, idempotency_key, created_at
		FROM orders
		WHERE race_id = $1 AND bet_type = $2
		ORDER BY id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID, betType)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query orders: %v", models.ErrStoreFault, err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID, &order.RaceID, &order.BetType, &order.Selection,
			&order.Amount, &order.Status, &order.IdempotencyKey, &order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan order: %v", models.ErrStoreFault, err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read order rows: %v", models.ErrStoreFault, err)
	}

	return orders, nil
}
