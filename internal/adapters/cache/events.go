// Package cache keeps the upcoming event list in process and refreshes it
// on a wall-clock schedule.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

const defaultTTL = 24 * time.Hour

// Loader fetches the current list of upcoming events.
type Loader func(ctx context.Context) ([]model.EventSummary, error)

// EventsCache holds the last loaded event list and when it was loaded.
type EventsCache struct {
	load   Loader
	ttl    time.Duration
	now    func() time.Time
	logger logger.Logger

	mu          sync.RWMutex
	events      []model.EventSummary
	lastRefresh time.Time
	loaded      bool

	group singleflight.Group
}

// NewEventsCache creates an empty cache around load.
func NewEventsCache(load Loader, opts ...Option) (*EventsCache, error) {
	if load == nil {
		return nil, ErrNoLoader
	}
	c := &EventsCache{
		load: load,
		ttl:  defaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("events-cache")
	}
	return c, nil
}

// Get returns the cached events, refreshing first when the cache is empty
// or older than the TTL. When that refresh fails a stale payload is still
// served; with nothing cached the error is returned.
func (c *EventsCache) Get(ctx context.Context) ([]model.EventSummary, error) {
	events, last, ok := c.Snapshot()
	if ok && len(events) > 0 && c.now().Sub(last) <= c.ttl {
		return events, nil
	}

	if err := c.Refresh(ctx); err != nil {
		if ok {
			c.logger.Warn(ctx, "serving stale events", logger.Time("last_refresh", last), logger.Error(err))
			return events, nil
		}
		return nil, err
	}
	events, _, _ = c.Snapshot()
	return events, nil
}

// Refresh reloads the payload. Concurrent calls share one load. On failure
// the previous payload is kept.
func (c *EventsCache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		start := c.now()
		events, err := c.load(ctx)
		if err != nil {
			metrics.RecordCacheRefresh("error")
			c.logger.Error(ctx, "event cache refresh failed", logger.Error(err))
			return nil, err
		}
		if events == nil {
			events = []model.EventSummary{}
		}

		c.mu.Lock()
		c.events = events
		c.lastRefresh = c.now()
		c.loaded = true
		c.mu.Unlock()

		metrics.RecordCacheRefresh("ok")
		metrics.UpdateCacheSize(len(events))
		metrics.UpdateCacheLastRefresh(c.lastRefreshUnix())
		c.logger.Info(ctx, "event cache refreshed",
			logger.Int("events", len(events)),
			logger.Duration("elapsed", c.now().Sub(start)))
		return nil, nil
	})
	return err
}

// Snapshot returns a copy of the payload, its refresh time, and whether a
// payload was ever loaded.
func (c *EventsCache) Snapshot() ([]model.EventSummary, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.EventSummary(nil), c.events...), c.lastRefresh, c.loaded
}

func (c *EventsCache) lastRefreshUnix() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh.Unix()
}
