package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wanwanbooboo/boatrace/internal/metrics"
	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/repository"
)

// SnapshotSource is anything that can produce odds snapshots to ingest.
type SnapshotSource interface {
	FetchSnapshots(ctx context.Context) ([]FeedSnapshot, error)
}

// Collector appends feed snapshots to the store under the write contract:
// snapshot_ts per (race_id, bet_type) stream is strictly increasing and
// written ticks are never mutated. Redeliveries of the current head are
// ignored; out-of-order snapshots are dropped and counted so upstream
// reordering stays visible.
type Collector struct {
	source SnapshotSource
	ticks  repository.TickRepository
	logger *logrus.Logger

	mu    sync.Mutex
	heads map[string]time.Time // stream key -> newest appended snapshot_ts
}

// NewCollector creates a collector over the given snapshot source
func NewCollector(source SnapshotSource, ticks repository.TickRepository, logger *logrus.Logger) *Collector {
	return &Collector{
		source: source,
		ticks:  ticks,
		logger: logger,
		heads:  make(map[string]time.Time),
	}
}

// CollectOnce fetches one batch from the feed and appends every admissible
// snapshot. Feed errors are returned; per-snapshot rejections are counted
// and logged but do not abort the batch.
func (c *Collector) CollectOnce(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("no snapshot source configured")
	}

	snapshots, err := c.source.FetchSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch odds snapshots: %w", err)
	}

	for _, snap := range snapshots {
		if err := c.Append(ctx, snap); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"race_id":  snap.RaceID,
				"bet_type": snap.BetType,
			}).Warn("Snapshot rejected")
		}
	}

	return nil
}

// Append validates one snapshot against the write contract and persists it.
func (c *Collector) Append(ctx context.Context, snap FeedSnapshot) error {
	if snap.RaceID == "" || snap.BetType == "" {
		metrics.TicksRejectedTotal.WithLabelValues("missing_stream_key").Inc()
		return fmt.Errorf("snapshot missing race_id or bet_type")
	}
	if snap.SnapshotTS.IsZero() {
		metrics.TicksRejectedTotal.WithLabelValues("missing_timestamp").Inc()
		return fmt.Errorf("snapshot missing capture timestamp")
	}

	head, err := c.streamHead(ctx, snap.RaceID, snap.BetType)
	if err != nil {
		return err
	}
	// The head snapshot is already fully appended. Re-appending an
	// equal-ts delivery would duplicate its selections in the store, so
	// redelivery is an idempotent no-op, not a second write.
	if snap.SnapshotTS.Equal(head) {
		metrics.TicksRejectedTotal.WithLabelValues("redelivered").Inc()
		c.logger.WithFields(logrus.Fields{
			"race_id":     snap.RaceID,
			"bet_type":    snap.BetType,
			"snapshot_ts": snap.SnapshotTS,
		}).Debug("Snapshot already appended, ignoring redelivery")
		return nil
	}
	if snap.SnapshotTS.Before(head) {
		metrics.TicksRejectedTotal.WithLabelValues("out_of_order").Inc()
		return fmt.Errorf("snapshot_ts %s precedes stream head %s",
			snap.SnapshotTS.Format(time.RFC3339), head.Format(time.RFC3339))
	}

	ticks := make([]*models.OddsTick, 0, len(snap.Ticks))
	seen := make(map[string]struct{}, len(snap.Ticks))
	for _, t := range snap.Ticks {
		if _, dup := seen[t.Selection]; dup {
			metrics.TicksRejectedTotal.WithLabelValues("duplicate_selection").Inc()
			return fmt.Errorf("duplicate selection %q in feed snapshot", t.Selection)
		}
		seen[t.Selection] = struct{}{}

		odds, err := decimal.NewFromString(t.Odds)
		if err != nil {
			metrics.TicksRejectedTotal.WithLabelValues("bad_odds").Inc()
			return fmt.Errorf("unparseable odds %q for selection %q: %w", t.Odds, t.Selection, err)
		}

		ticks = append(ticks, &models.OddsTick{
			RaceID:     snap.RaceID,
			BetType:    snap.BetType,
			Selection:  t.Selection,
			Odds:       odds,
			SnapshotTS: snap.SnapshotTS,
		})
	}

	if err := c.ticks.InsertBatch(ctx, ticks); err != nil {
		return err
	}

	c.mu.Lock()
	c.heads[streamKey(snap.RaceID, snap.BetType)] = snap.SnapshotTS
	c.mu.Unlock()

	metrics.TicksCollectedTotal.Add(float64(len(ticks)))
	c.logger.WithFields(logrus.Fields{
		"race_id":     snap.RaceID,
		"bet_type":    snap.BetType,
		"snapshot_ts": snap.SnapshotTS,
		"ticks":       len(ticks),
	}).Info("Odds snapshot appended")

	return nil
}

// streamHead returns the newest appended snapshot_ts for a stream, loading
// it from the store on first touch after a restart.
func (c *Collector) streamHead(ctx context.Context, raceID, betType string) (time.Time, error) {
	key := streamKey(raceID, betType)

	c.mu.Lock()
	head, ok := c.heads[key]
	c.mu.Unlock()
	if ok {
		return head, nil
	}

	head, err := c.ticks.LastSnapshotTS(ctx, raceID, betType)
	if err != nil {
		return time.Time{}, err
	}

	c.mu.Lock()
	c.heads[key] = head
	c.mu.Unlock()
	return head, nil
}

func streamKey(raceID, betType string) string {
	return raceID + "|" + betType
}
