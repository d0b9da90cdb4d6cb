// Package dedupe tracks ids that were already handled within one run, such
// as athletes met while consolidating rankings or events listed by several
// series.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be recorded again.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// Set is an in-memory Deduper. It is safe for concurrent use.
type Set struct {
	mu      sync.Mutex
	seen    map[string]int // id -> position in order
	order   []string       // insertion order; slots not indexed by seen are dead
	head    int            // first live slot in order
	maxSize int
}

var _ Deduper = (*Set)(nil)

// New creates an unbounded Set unless WithMaxSize is given.
func New(opts ...Option) *Set {
	s := &Set{seen: make(map[string]int)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeenAndRecord implements Deduper.
func (s *Set) SeenAndRecord(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return true
	}
	if s.maxSize > 0 && len(s.seen) >= s.maxSize {
		s.evictOldest()
	}
	s.seen[id] = len(s.order)
	s.order = append(s.order, id)
	return false
}

// Unrecord implements Deduper.
func (s *Set) Unrecord(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.seen[id]
	if !ok {
		return
	}
	delete(s.seen, id)
	s.order[pos] = ""
	s.compact()
}

// Size implements Deduper.
func (s *Set) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.seen))
}

// Contains reports whether id is recorded without recording it.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// evictOldest must be called with s.mu held.
func (s *Set) evictOldest() {
	for s.head < len(s.order) {
		id := s.order[s.head]
		s.order[s.head] = ""
		s.head++
		if pos, ok := s.seen[id]; ok && pos == s.head-1 {
			delete(s.seen, id)
			break
		}
	}
	s.compact()
}

// compact drops dead slots once they make up half of order.
// Must be called with s.mu held.
func (s *Set) compact() {
	if len(s.order) < 64 || len(s.seen)*2 > len(s.order) {
		return
	}
	live := make([]string, 0, len(s.seen))
	for i := s.head; i < len(s.order); i++ {
		id := s.order[i]
		if pos, ok := s.seen[id]; ok && pos == i {
			s.seen[id] = len(live)
			live = append(live, id)
		}
	}
	s.order = live
	s.head = 0
}
