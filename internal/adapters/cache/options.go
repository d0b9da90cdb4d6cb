package cache

import (
	"time"

	"github.com/okian/fwtrank/pkg/logger"
)

// Option applies a configuration option to the EventsCache.
type Option func(*EventsCache)

// WithTTL sets how long a payload stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *EventsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the clock used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *EventsCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *EventsCache) {
		if l != nil {
			c.logger = l
		}
	}
}
