package repository

import "time"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithTTL sets how long a stored report is served. Zero or less disables
// the store: Put becomes a no-op.
func WithTTL(ttl time.Duration) Option {
	return func(s *InMemoryStore) {
		s.ttl = ttl
	}
}

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCleanupInterval sets how often expired reports are evicted by Run.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *InMemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}
