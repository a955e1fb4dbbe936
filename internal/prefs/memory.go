package prefs

import (
	"context"
	"sync"

	"github.com/zetalabs/convo/internal/domain"
)

// MemoryStore implements Store with an in-process map for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.PreferenceRecord
}

// NewMemoryStore creates an in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*domain.PreferenceRecord)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, userID string) (*domain.PreferenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, userID string, rec *domain.PreferenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[userID] = &cp
	return nil
}
