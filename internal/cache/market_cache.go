// Package cache provides read caching for resolved market snapshots.
package cache

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/wanwanbooboo/boatrace/internal/metrics"
	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/repository"
)

// CachedTickRepository decorates a TickRepository with an in-memory cache
// for market reads. Snapshots are immutable once written, so a cached
// market can never go stale; the TTL only bounds memory. Snapshot
// resolution is never cached because the store keeps growing.
type CachedTickRepository struct {
	repository.TickRepository

	markets *cache.Cache
	logger  *logrus.Logger
}

// NewCachedTickRepository wraps repo with a market read cache
func NewCachedTickRepository(repo repository.TickRepository, ttl time.Duration, logger *logrus.Logger) *CachedTickRepository {
	return &CachedTickRepository{
		TickRepository: repo,
		markets:        cache.New(ttl, ttl*2),
		logger:         logger,
	}
}

// GetMarket returns the cached snapshot members when present, otherwise
// reads through and caches the result. Errors are never cached.
func (c *CachedTickRepository) GetMarket(ctx context.Context, raceID, betType string, snapshotTS time.Time) (models.Market, error) {
	key := marketKey(raceID, betType, snapshotTS)

	if cached, found := c.markets.Get(key); found {
		if market, ok := cached.(models.Market); ok {
			return market, nil
		}
	}

	market, err := c.TickRepository.GetMarket(ctx, raceID, betType, snapshotTS)
	if err != nil {
		return nil, err
	}

	c.markets.SetDefault(key, market)
	metrics.MarketCacheSize.Set(float64(c.markets.ItemCount()))
	c.logger.WithFields(logrus.Fields{
		"race_id":     raceID,
		"bet_type":    betType,
		"snapshot_ts": snapshotTS,
		"entries":     len(market),
	}).Debug("Market snapshot cached")

	return market, nil
}

func marketKey(raceID, betType string, snapshotTS time.Time) string {
	return fmt.Sprintf("%s|%s|%s", raceID, betType, snapshotTS.UTC().Format(time.RFC3339Nano))
}
