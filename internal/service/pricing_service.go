// Package service wires snapshot resolution, probability blending, candidate
// selection and the order ledger into the pricing flow.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wanwanbooboo/boatrace/internal/metrics"
	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/pricing"
	"github.com/wanwanbooboo/boatrace/internal/repository"
)

// PricingRequest is one pricing/submission unit of work.
type PricingRequest struct {
	RaceID  string
	BetType string
	AsOf    time.Time
	TopK    int
}

// PricingResponse reports the submitted candidates, their per-candidate
// ledger outcome, and the snapshot the whole request was priced against.
type PricingResponse struct {
	RaceID     string                    `json:"race_id"`
	BetType    string                    `json:"bet_type"`
	SnapshotTS time.Time                 `json:"snapshot_ts"`
	Candidates []models.Candidate        `json:"candidates"`
	Orders     []models.SubmissionResult `json:"orders_insert"`
	Mode       models.ExecutionMode      `json:"mode"`
}

// PricingConfig carries the engine knobs the service needs per process.
type PricingConfig struct {
	EVMin float64
	Alpha float64
	Stake pricing.StakeStrategy
	Mode  models.ExecutionMode
}

// PricingService prices candidates against one resolved snapshot and
// records order intents exactly once. Requests are independent: the only
// shared resource underneath is the store connection pool.
type PricingService struct {
	ticks  repository.TickRepository
	orders repository.OrderRepository
	model  pricing.MarketProbabilityModel
	cfg    PricingConfig
	logger *logrus.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(
	ticks repository.TickRepository,
	orders repository.OrderRepository,
	model pricing.MarketProbabilityModel,
	cfg PricingConfig,
	logger *logrus.Logger,
) *PricingService {
	return &PricingService{
		ticks:  ticks,
		orders: orders,
		model:  model,
		cfg:    cfg,
		logger: logger,
	}
}

// PriceAndSubmit resolves the snapshot at or before the requested time,
// prices the market against it, and submits the selected candidates to the
// ledger. The pure pricing stages never fail; only the resolver, market
// read and ledger insert can, and a ledger fault rolls the batch back so
// the caller may retry the whole request safely.
func (s *PricingService) PriceAndSubmit(ctx context.Context, req PricingRequest) (*PricingResponse, error) {
	start := time.Now()

	snapshotTS, err := s.ticks.ResolveSnapshot(ctx, req.RaceID, req.BetType, req.AsOf)
	if err != nil {
		metrics.PricingRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	market, err := s.ticks.GetMarket(ctx, req.RaceID, req.BetType, snapshotTS)
	if err != nil {
		metrics.PricingRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	implied := pricing.ImpliedProbabilities(market)
	modeled := s.model.Estimate(market)
	blended := pricing.Blend(modeled, implied, s.cfg.Alpha)

	candidates := pricing.Select(market, blended, pricing.SelectorConfig{
		EVMin: s.cfg.EVMin,
		TopK:  req.TopK,
		Stake: s.cfg.Stake,
	})

	results, err := s.orders.SubmitBatch(ctx, req.RaceID, req.BetType, snapshotTS, candidates)
	if err != nil {
		metrics.PricingRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	for _, r := range results {
		metrics.RecordSubmission(r.Inserted, r.Reason)
	}
	metrics.PricingRequestsTotal.WithLabelValues("ok").Inc()
	metrics.PricingDuration.Observe(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"race_id":     req.RaceID,
		"bet_type":    req.BetType,
		"snapshot_ts": snapshotTS,
		"market_size": len(market),
		"candidates":  len(candidates),
	}).Info("Pricing request completed")

	return &PricingResponse{
		RaceID:     req.RaceID,
		BetType:    req.BetType,
		SnapshotTS: snapshotTS,
		Candidates: candidates,
		Orders:     results,
		Mode:       s.cfg.Mode,
	}, nil
}
