package escalation

import (
	"context"
	"sync"

	"github.com/zetalabs/convo/internal/domain"
)

// MemoryRecordStore implements RecordStore in process, for tests and
// deployments without an admin backend.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Escalation
}

// NewMemoryRecordStore creates an in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]*domain.Escalation)}
}

// CreateRecord implements RecordStore.
func (s *MemoryRecordStore) CreateRecord(ctx context.Context, e *domain.Escalation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.records[e.ID] = &cp
	return nil
}

// UpdateRecord implements RecordStore.
func (s *MemoryRecordStore) UpdateRecord(ctx context.Context, e *domain.Escalation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.records[e.ID] = &cp
	return nil
}

// GetRecord implements RecordStore.
func (s *MemoryRecordStore) GetRecord(ctx context.Context, id string) (*domain.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}
