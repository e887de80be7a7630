package market

import (
	"sync"
	"time"
)

// entry is one cached payload with its capture time.
type entry struct {
	value interface{}
	ts    time.Time
}

// Store owns all process-wide resolver state: cached payloads, per-key rate
// windows and the fallback quota counter. It is constructed once in main and
// injected wherever needed; a process restart clears everything. The mutex
// protects map integrity under concurrent requests, nothing more. There is
// no request coalescing, so two simultaneous cache misses may both trigger a
// live fetch.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	lastCall map[string]time.Time
	quota    *Quota
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(quota *Quota) *Store {
	return NewStoreWithClock(quota, time.Now)
}

// NewStoreWithClock creates a store with a caller-supplied clock. Tests use
// this to pin time.
func NewStoreWithClock(quota *Quota, now func() time.Time) *Store {
	return &Store{
		entries:  make(map[string]entry),
		lastCall: make(map[string]time.Time),
		quota:    quota,
		now:      now,
	}
}

// Fresh returns the cached value for key if it is younger than ttl.
func (s *Store) Fresh(key string, ttl time.Duration) (interface{}, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.ts) >= ttl {
		return nil, time.Time{}, false
	}
	return e.value, e.ts, true
}

// Any returns the cached value for key regardless of age. Callers serving it
// past the freshness window mark the response stale.
func (s *Store) Any(key string) (interface{}, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.value, e.ts, true
}

// Put replaces the cached value for key wholesale.
func (s *Store) Put(key string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: v, ts: s.now()}
}

// Allow reports whether a live call for key may be dispatched now, and
// records the dispatch time when it may. Two calls for the same key closer
// together than minInterval never both pass.
func (s *Store) Allow(key string, minInterval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastCall[key]; ok && now.Sub(last) < minInterval {
		return false
	}
	s.lastCall[key] = now
	return true
}

// Quota exposes the fallback call counter.
func (s *Store) Quota() *Quota {
	return s.quota
}
