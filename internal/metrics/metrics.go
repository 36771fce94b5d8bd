// Package metrics provides the centralized Prometheus metrics registry for
// the EV engine and the odds collector.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PricingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "pricing_requests_total",
		Help:      "Total number of pricing requests, by outcome",
	}, []string{"outcome"})
	OrdersInsertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "orders_inserted_total",
		Help:      "Total number of orders newly persisted by the ledger",
	})
	OrdersDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "orders_duplicate_total",
		Help:      "Total number of submissions deduplicated by idempotency key",
	})
	OrdersSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "orders_skipped_total",
		Help:      "Total number of candidates skipped for non-positive stakes",
	})
	TicksCollectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "ticks_collected_total",
		Help:      "Total number of odds ticks appended by the collector",
	})
	TicksRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boatrace",
		Name:      "ticks_rejected_total",
		Help:      "Total number of odds ticks rejected by the collector, by reason",
	}, []string{"reason"})
)

// Gauge metrics
var (
	MarketCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "boatrace",
		Name:      "market_cache_size",
		Help:      "Number of market snapshots currently cached",
	})
)

// Histogram metrics
var (
	PricingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "boatrace",
		Name:      "pricing_duration_seconds",
		Help:      "End-to-end duration of pricing and submission in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	FeedFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "boatrace",
		Name:      "feed_fetch_duration_seconds",
		Help:      "Duration of odds feed fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PricingRequestsTotal)
		registry.MustRegister(OrdersInsertedTotal)
		registry.MustRegister(OrdersDuplicateTotal)
		registry.MustRegister(OrdersSkippedTotal)
		registry.MustRegister(TicksCollectedTotal)
		registry.MustRegister(TicksRejectedTotal)

		registry.MustRegister(MarketCacheSize)

		registry.MustRegister(PricingDuration)
		registry.MustRegister(FeedFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSubmission updates the order counters from one submission outcome.
func RecordSubmission(inserted bool, reason string) {
	switch {
	case inserted:
		OrdersInsertedTotal.Inc()
	case reason == "duplicate":
		OrdersDuplicateTotal.Inc()
	default:
		OrdersSkippedTotal.Inc()
	}
}
