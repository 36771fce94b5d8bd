package collector

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StreamSubscriber consumes odds snapshots pushed by the feed over a
// websocket instead of polling. Each message carries one FeedSnapshot and
// goes through the same write-contract validation as polled batches.
type StreamSubscriber struct {
	url       string
	collector *Collector
	logger    *logrus.Logger
}

// NewStreamSubscriber creates a websocket feed subscriber
func NewStreamSubscriber(url string, collector *Collector, logger *logrus.Logger) *StreamSubscriber {
	return &StreamSubscriber{
		url:       url,
		collector: collector,
		logger:    logger,
	}
}

// Run connects and listens until the context is cancelled, reconnecting
// with a fixed backoff on any connection failure.
func (s *StreamSubscriber) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stream subscriber stopping")
			return
		default:
			if err := s.connectAndListen(ctx); err != nil {
				s.logger.WithError(err).Warn("Feed stream disconnected, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(3 * time.Second):
				}
			}
		}
	}
}

func (s *StreamSubscriber) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.WithField("url", s.url).Info("Connected to odds feed stream")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var snap FeedSnapshot
		if err := json.Unmarshal(message, &snap); err != nil {
			s.logger.WithError(err).Warn("Invalid stream message")
			continue
		}

		if err := s.collector.Append(ctx, snap); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"race_id":  snap.RaceID,
				"bet_type": snap.BetType,
			}).Warn("Streamed snapshot rejected")
		}
	}
}
