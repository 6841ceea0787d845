package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value V
	ts    time.Time
}

type stamp struct {
	key string
	ts  time.Time
}

// Store is a capacity- and TTL-bounded map from string keys to values.
// The analysis memo and the stream dedup ledger both sit on it so neither
// grows without bound over the life of the process. All methods are safe
// for concurrent use.
type Store[V any] struct {
	mu       sync.Mutex
	items    map[string]item[V]
	order    []stamp
	capacity int
	ttl      time.Duration
}

// New creates a store with the provided capacity and ttl.
func New[V any](capacity int, ttl time.Duration) *Store[V] {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store[V]{
		items:    make(map[string]item[V], capacity),
		order:    make([]stamp, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the value stored under key, if present and inside the ttl window.
func (s *Store[V]) Get(key string) (V, bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.items[key]; ok && now.Sub(it.ts) <= s.ttl {
		return it.value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present and inside the ttl window.
func (s *Store[V]) Contains(key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	return ok && now.Sub(it.ts) <= s.ttl
}

// Put records value under key, refreshing its ttl window.
func (s *Store[V]) Put(key string, value V) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(key, value, now)
}

// PutIfAbsent records value under key unless a live entry already exists.
// It reports whether the key was newly added. The check and the write happen
// under one lock, so concurrent callers cannot both claim the same key.
func (s *Store[V]) PutIfAbsent(key string, value V) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.items[key]; ok && now.Sub(it.ts) <= s.ttl {
		return false
	}
	s.put(key, value, now)
	return true
}

func (s *Store[V]) put(key string, value V, now time.Time) {
	s.items[key] = item[V]{value: value, ts: now}
	s.order = append(s.order, stamp{key: key, ts: now})
	s.compact(now)
}

func (s *Store[V]) compact(now time.Time) {
	cutoff := now.Add(-s.ttl)

	for len(s.order) > 0 && (len(s.items) > s.capacity || s.order[0].ts.Before(cutoff)) {
		oldest := s.order[0]
		s.order = s.order[1:]

		if it, ok := s.items[oldest.key]; ok {
			// A refreshed entry carries a newer stamp; leave it alone.
			if it.ts == oldest.ts {
				delete(s.items, oldest.key)
			}
		}
	}
}
