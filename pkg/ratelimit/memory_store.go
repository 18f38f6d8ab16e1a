package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// evictEvery is how many checks pass between eviction scans.
	evictEvery = 64
	// evictBatch caps the records inspected by one scan.
	evictBatch = 256
)

// MemoryStore keeps timestamp records in process memory. A map-level lock
// guards the key set and each record has its own mutex, so checks for
// different clients do not contend.
//
// Records whose window has fully elapsed are evicted during checks: every
// evictEvery calls a bounded batch of records is scanned and idle ones are
// dropped. No goroutine is started.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	checks  uint64
}

type record struct {
	mu         sync.Mutex
	timestamps []time.Time
	window     time.Duration
	// dead is set once the record has left the map; holders must re-fetch.
	dead bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

// acquire returns the live record for key, locked.
func (s *MemoryStore) acquire(key string) *record {
	for {
		s.mu.Lock()
		r, ok := s.records[key]
		if !ok {
			r = &record{}
			s.records[key] = r
		}
		s.mu.Unlock()

		r.mu.Lock()
		if !r.dead {
			return r
		}
		r.mu.Unlock()
	}
}

func (s *MemoryStore) CheckAndRecord(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time, error) {
	allowed, count, oldest := s.checkAndRecord(key, now, window, limit)
	s.maybeEvict(now)
	return allowed, count, oldest, nil
}

func (s *MemoryStore) checkAndRecord(key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time) {
	r := s.acquire(key)
	defer r.mu.Unlock()

	r.window = window
	cutoff := now.Add(-window)
	kept := r.timestamps[:0]
	for _, ts := range r.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.timestamps = kept

	if len(r.timestamps) >= limit {
		return false, len(r.timestamps), oldestOf(r.timestamps, now)
	}
	r.timestamps = append(r.timestamps, now)
	return true, len(r.timestamps), oldestOf(r.timestamps, now)
}

// maybeEvict drops up to evictBatch records whose newest timestamp is at or
// before now minus their own window. Records busy in another check are skipped.
func (s *MemoryStore) maybeEvict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checks++
	if s.checks%evictEvery != 0 {
		return
	}

	scanned := 0
	for key, r := range s.records {
		if scanned == evictBatch {
			return
		}
		scanned++
		if !r.mu.TryLock() {
			continue
		}
		if idle(r, now) {
			r.dead = true
			delete(s.records, key)
		}
		r.mu.Unlock()
	}
}

func idle(r *record, now time.Time) bool {
	cutoff := now.Add(-r.window)
	for _, ts := range r.timestamps {
		if ts.After(cutoff) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	r, ok := s.records[key]
	delete(s.records, key)
	s.mu.Unlock()

	if ok {
		r.mu.Lock()
		r.dead = true
		r.mu.Unlock()
	}
	return nil
}

// Len returns the number of keys with a record.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func oldestOf(ts []time.Time, fallback time.Time) time.Time {
	if len(ts) == 0 {
		return fallback
	}
	oldest := ts[0]
	for _, t := range ts[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest
}
