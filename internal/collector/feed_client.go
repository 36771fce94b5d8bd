// Package collector implements the odds ingestion collaborator: it fetches
// market observations from an external feed and appends them to the
// snapshot store under the append-only write contract.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wanwanbooboo/boatrace/internal/metrics"
)

// FeedSnapshot is one complete market observation as delivered by the feed.
type FeedSnapshot struct {
	RaceID     string     `json:"race_id"`
	BetType    string     `json:"bet_type"`
	SnapshotTS time.Time  `json:"snapshot_ts"`
	Ticks      []FeedTick `json:"ticks"`
}

// FeedTick is one (selection, odds) observation inside a feed snapshot.
type FeedTick struct {
	Selection string `json:"selection"`
	Odds      string `json:"odds"`
}

// FeedClient fetches odds snapshots over HTTP with retries and rate
// limiting so a flaky or throttled feed never overwhelms either side.
type FeedClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// FeedClientConfig holds the feed client knobs.
type FeedClientConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// DefaultFeedClientConfig returns recommended defaults
func DefaultFeedClientConfig(baseURL, apiKey string, rateLimit float64) FeedClientConfig {
	if rateLimit <= 0 {
		rateLimit = 2.0
	}
	return FeedClientConfig{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Timeout:      30 * time.Second,
		MaxRetries:   5,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    rateLimit,
	}
}

// NewFeedClient creates a rate-limited retrying feed client
func NewFeedClient(cfg FeedClientConfig, logger *logrus.Logger) *FeedClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	return &FeedClient{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// FetchSnapshots pulls the current batch of odds snapshots from the feed.
func (c *FeedClient) FetchSnapshots(ctx context.Context) ([]FeedSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var snapshots []FeedSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode feed payload: %w", err)
	}

	return snapshots, nil
}
