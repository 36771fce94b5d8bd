//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanwanbooboo/boatrace/internal/database"
	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/repository"
)

func testCandidates() []models.Candidate {
	return []models.Candidate{
		{Selection: "1-2-3", Probability: 0.52, Odds: decimal.NewFromInt(1850), EV: 9.62, Stake: 500},
		{Selection: "1-3-2", Probability: 0.48, Odds: decimal.NewFromInt(2000), EV: 9.60, Stake: 500},
	}
}

// TestOrderLedgerIdempotency verifies that resubmitting the same pricing
// outcome never creates additional orders.
func TestOrderLedgerIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresOrderRepository(db)
	raceID := "race-" + uuid.NewString()
	snapshotTS := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.SubmitBatch(ctx, raceID, "TRI", snapshotTS, testCandidates())
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, r := range first {
		assert.True(t, r.Inserted)
		require.NotNil(t, r.OrderID)
	}

	second, err := repo.SubmitBatch(ctx, raceID, "TRI", snapshotTS, testCandidates())
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, r := range second {
		assert.False(t, r.Inserted)
		assert.Equal(t, models.ReasonDuplicate, r.Reason)
	}

	orders, err := repo.GetByRaceID(ctx, raceID, "TRI")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, models.OrderStatusRequested, o.Status)
		assert.EqualValues(t, 500, o.Amount)
	}
}

// TestConcurrentSubmission races identical submissions and checks the
// uniqueness constraint admits each candidate exactly once.
func TestConcurrentSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresOrderRepository(db)
	raceID := "race-" + uuid.NewString()
	snapshotTS := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	concurrency := 8
	inserted := make([]int, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			results, err := repo.SubmitBatch(ctx, raceID, "TRI", snapshotTS, testCandidates())
			assert.NoError(t, err)
			for _, r := range results {
				if r.Inserted {
					inserted[index]++
				}
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range inserted {
		total += n
	}
	assert.Equal(t, len(testCandidates()), total, "each candidate should be inserted exactly once")

	orders, err := repo.GetByRaceID(ctx, raceID, "TRI")
	require.NoError(t, err)
	assert.Len(t, orders, len(testCandidates()))
}

// TestZeroStakeCandidatesAreNotPersisted checks that skipped candidates
// leave no trace in the ledger.
func TestZeroStakeCandidatesAreNotPersisted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresOrderRepository(db)
	raceID := "race-" + uuid.NewString()
	snapshotTS := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	candidates := []models.Candidate{
		{Selection: "1-2-3", Probability: 0.52, Odds: decimal.NewFromInt(1850), EV: 9.62, Stake: 500},
		{Selection: "1-3-2", Probability: 0.48, Odds: decimal.NewFromInt(2000), EV: 9.60, Stake: 0},
	}

	results, err := repo.SubmitBatch(ctx, raceID, "TRI", snapshotTS, candidates)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Inserted)
	assert.False(t, results[1].Inserted)
	assert.Equal(t, models.ReasonNonPositiveAmount, results[1].Reason)

	orders, err := repo.GetByRaceID(ctx, raceID, "TRI")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1-2-3", orders[0].Selection)
}
