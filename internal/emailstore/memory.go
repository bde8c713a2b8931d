package emailstore

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a process-local backend for tests and throwaway
// deployments. Same cap and dedupe semantics as the file backend, minus the
// serialized-size bound.
type MemoryStore struct {
	mu      sync.Mutex
	limits  Limits
	records []Record
}

func NewMemoryStore(limits Limits) *MemoryStore {
	return &MemoryStore{limits: limits}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) (SaveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limits.MaxRecords > 0 && len(s.records) >= s.limits.MaxRecords {
		return StatusDropped, nil
	}
	for _, existing := range s.records {
		if strings.EqualFold(existing.Email, rec.Email) {
			return StatusDuplicate, nil
		}
	}
	s.records = append(s.records, rec)
	return StatusStored, nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
