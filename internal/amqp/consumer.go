package amqp

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"expensetracker/internal/voice"
)

// defaultStableAfter is how long a subscription must stay up before a
// reconnect starts again from the shortest backoff.
const defaultStableAfter = 30 * time.Second

type subscription interface {
	ConsumeSegments(ctx context.Context, handler SegmentHandler) error
	Close() error
}

// Consumer keeps a segment subscription alive, reconnecting with exponential
// backoff whenever the broker connection drops. The backoff only resets after
// a session that delivered a segment or lasted stableAfter; a broker that
// accepts connections but refuses the consume keeps backing off.
type Consumer struct {
	url          string
	exchangeName string
	queueName    string

	dial        func(url, exchange, queue string) (subscription, error)
	backoff     func(attempt int) time.Duration
	stableAfter time.Duration
}

func NewConsumer(url, exchangeName, queueName string) *Consumer {
	return &Consumer{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		dial: func(url, exchange, queue string) (subscription, error) {
			return NewClient(url, exchange, queue)
		},
		backoff:     exponentialBackoff,
		stableAfter: defaultStableAfter,
	}
}

// Run consumes until ctx is cancelled. It only returns nil.
func (c *Consumer) Run(ctx context.Context, handler SegmentHandler) error {
	attempt := 0
	for {
		sub, err := c.dial(c.url, c.exchangeName, c.queueName)
		if err == nil {
			slog.InfoContext(ctx, "Connected to voice feed", "exchange", c.exchangeName, "queue", c.queueName)
			var delivered atomic.Bool
			started := time.Now()
			err = sub.ConsumeSegments(ctx, func(ctx context.Context, seg voice.Segment) error {
				delivered.Store(true)
				return handler(ctx, seg)
			})
			sub.Close()
			if delivered.Load() || (c.stableAfter > 0 && time.Since(started) >= c.stableAfter) {
				attempt = 0
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		wait := c.backoff(attempt)
		attempt++
		slog.WarnContext(ctx, "Voice feed unavailable, retrying",
			"error", err,
			"connection_error", isConnectionError(err),
			"attempt", attempt,
			"retry_in", wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}
