package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in an in-process map. Suitable when session
// state is never shared across instances. One mutex serializes every
// check-then-record cycle; windows are short slices, so contention is not a
// concern at interactive rates.
type MemoryStore struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[string][]time.Time),
	}
}

func memoryKey(sessionID, action string) string {
	return sessionID + "\x00" + action
}

// pruneLocked drops expired timestamps and deletes the key when nothing
// remains, so dead sessions do not accumulate.
func (s *MemoryStore) pruneLocked(key string, cutoff time.Time) []time.Time {
	entries := s.history[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.history, key)
		return nil
	}
	s.history[key] = kept
	return kept
}

func (s *MemoryStore) Check(_ context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.pruneLocked(memoryKey(sessionID, action), now.Add(-window))
	return decisionFor(len(entries), limit), nil
}

func (s *MemoryStore) Record(_ context.Context, sessionID, action string, window time.Duration, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(sessionID, action)
	entries := s.pruneLocked(key, now.Add(-window))
	s.history[key] = append(entries, now)
	return nil
}

func (s *MemoryStore) Reserve(_ context.Context, sessionID, action string, limit int, window time.Duration, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(sessionID, action)
	entries := s.pruneLocked(key, now.Add(-window))
	d := decisionFor(len(entries), limit)
	if !d.Allowed {
		return d, nil
	}

	s.history[key] = append(entries, now)
	return d, nil
}

func decisionFor(count, limit int) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	if count >= limit {
		return Decision{Allowed: false, Remaining: 0}
	}
	return Decision{Allowed: true, Remaining: remaining}
}
