// Package repository keeps built event reports in process for a short time.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/fwtrank/internal/domain/report"
)

const (
	defaultTTL             = 10 * time.Minute
	defaultCleanupInterval = time.Minute
)

// Store caches event reports by event id.
type Store interface {
	// Get returns the report of eventID. It fails with ErrNotFound or
	// ErrExpired.
	Get(ctx context.Context, eventID string) (report.EventReport, error)

	// Put stores the report of eventID.
	Put(ctx context.Context, eventID string, r report.EventReport)

	// Count returns the number of stored reports, expired ones included.
	Count(ctx context.Context) int
}

type entry struct {
	report  report.EventReport
	expires time.Time
}

// InMemoryStore implements Store with a map and a TTL.
type InMemoryStore struct {
	mu              sync.RWMutex
	items           map[string]entry
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		items:           make(map[string]entry),
		ttl:             defaultTTL,
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether reports are kept at all.
func (s *InMemoryStore) Enabled() bool { return s.ttl > 0 }

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, eventID string) (report.EventReport, error) {
	s.mu.RLock()
	e, ok := s.items[eventID]
	s.mu.RUnlock()

	if !ok {
		return report.EventReport{}, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		return report.EventReport{}, ErrExpired
	}
	return e.report, nil
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, eventID string, r report.EventReport) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	s.items[eventID] = entry{report: r, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

// Count implements Store.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Evict removes expired reports and returns how many were removed.
func (s *InMemoryStore) Evict() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.items {
		if !now.Before(e.expires) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Run evicts expired reports periodically until ctx is done.
func (s *InMemoryStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}
