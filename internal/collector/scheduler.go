package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler drives periodic odds collection. The poll interval is short on
// purpose; the deadline buffer exists so operators can stop betting close
// to race start, it does not change collection cadence.
type Scheduler struct {
	cron      *cron.Cron
	collector *Collector
	logger    *logrus.Logger

	mu        sync.Mutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new collection scheduler
func NewScheduler(collector *Collector, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		collector: collector,
		logger:    logger,
	}
}

// SchedulePolling registers the recurring collection job.
func (s *Scheduler) SchedulePolling(intervalSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	entryID, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalSeconds)*time.Second)
		defer cancel()

		if err := s.collector.CollectOnce(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled collection failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add collection job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval", spec).Info("Odds polling scheduled")

	return nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
}
