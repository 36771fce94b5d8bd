//go:build integration

package integration

import (
	"context"
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

func seedSnapshot(t *testing.T, ctx context.Context, repo repository.TickRepository, raceID string, ts time.Time, odds map[string]int64) {
	t.Helper()

	ticks := make([]*models.OddsTick, 0, len(odds))
	for selection, o := range odds {
		ticks = append(ticks, &models.OddsTick{
			RaceID:     raceID,
			BetType:    "TRI",
			Selection:  selection,
			Odds:       decimal.NewFromInt(o),
			SnapshotTS: ts,
		})
	}
	require.NoError(t, repo.InsertBatch(ctx, ticks))
}

// TestSnapshotResolution verifies as-of resolution against a store with
// several snapshots of the same stream.
func TestSnapshotResolution(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresTickRepository(db)
	raceID := "race-" + uuid.NewString()

	ts1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(5 * time.Minute)
	seedSnapshot(t, ctx, repo, raceID, ts1, map[string]int64{"1-2-3": 1850, "1-3-2": 2000})
	seedSnapshot(t, ctx, repo, raceID, ts2, map[string]int64{"1-2-3": 1900, "1-3-2": 1950})

	// Between the two snapshots: the older one wins.
	resolved, err := repo.ResolveSnapshot(ctx, raceID, "TRI", ts1.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ts1.Equal(resolved))

	// At or after the newest snapshot: the newest one wins.
	resolved, err = repo.ResolveSnapshot(ctx, raceID, "TRI", ts2)
	require.NoError(t, err)
	assert.True(t, ts2.Equal(resolved))

	// Before any data.
	_, err = repo.ResolveSnapshot(ctx, raceID, "TRI", ts1.Add(-time.Minute))
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Resolution is repeatable while the store is unchanged.
	again, err := repo.ResolveSnapshot(ctx, raceID, "TRI", ts2)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(again))
}

// TestGetMarketReturnsOnlyResolvedSnapshot checks snapshot isolation: a
// market read never mixes ticks from different capture times.
func TestGetMarketReturnsOnlyResolvedSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresTickRepository(db)
	raceID := "race-" + uuid.NewString()

	ts1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(5 * time.Minute)
	seedSnapshot(t, ctx, repo, raceID, ts1, map[string]int64{"1-2-3": 1850, "1-3-2": 2000, "2-1-3": 3000})
	seedSnapshot(t, ctx, repo, raceID, ts2, map[string]int64{"1-2-3": 1900})

	market, err := repo.GetMarket(ctx, raceID, "TRI", ts1)
	require.NoError(t, err)
	require.Len(t, market, 3)

	// Ordered by selection for deterministic downstream pricing.
	assert.Equal(t, "1-2-3", market[0].Selection)
	assert.Equal(t, "1-3-2", market[1].Selection)
	assert.Equal(t, "2-1-3", market[2].Selection)
	assert.True(t, decimal.NewFromInt(1850).Equal(market[0].Odds))

	later, err := repo.GetMarket(ctx, raceID, "TRI", ts2)
	require.NoError(t, err)
	assert.Len(t, later, 1)
}

// TestLastSnapshotTS verifies stream head discovery used by the collector
// after a restart.
func TestLastSnapshotTS(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresTickRepository(db)
	raceID := "race-" + uuid.NewString()

	head, err := repo.LastSnapshotTS(ctx, raceID, "TRI")
	require.NoError(t, err)
	assert.True(t, head.IsZero())

	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedSnapshot(t, ctx, repo, raceID, ts, map[string]int64{"1-2-3": 1850})

	head, err = repo.LastSnapshotTS(ctx, raceID, "TRI")
	require.NoError(t, err)
	assert.True(t, ts.Equal(head))
}
