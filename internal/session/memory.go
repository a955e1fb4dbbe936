package session

import (
	"context"
	"sync"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

// MemoryStore implements Store with in-process maps. Used in tests and
// single-instance deployments without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memSession
	pending  map[string]string
	maxTurns int
	ttl      time.Duration
	now      func() time.Time
}

type memSession struct {
	// turns are held most-recent-first, mirroring the Redis layout.
	turns     []domain.Turn
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(maxTurns int, ttl time.Duration) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]*memSession),
		pending:  make(map[string]string),
		maxTurns: maxTurns,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, key domain.SessionKey, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	sess := s.live(k)
	if sess == nil {
		sess = &memSession{}
		s.sessions[k] = sess
	}

	sess.turns = append([]domain.Turn{turn}, sess.turns...)
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[:s.maxTurns]
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return nil
}

// History implements Store.
func (s *MemoryStore) History(ctx context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(key.String())
	if sess == nil {
		return nil, nil
	}

	n := len(sess.turns)
	if limit > 0 && limit < n {
		n = limit
	}

	turns := make([]domain.Turn, 0, n)
	for i := n - 1; i >= 0; i-- {
		turns = append(turns, sess.turns[i])
	}
	return turns, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, key domain.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key.String())
	delete(s.pending, key.String())
	return nil
}

// SetPendingQuery implements Store.
func (s *MemoryStore) SetPendingQuery(ctx context.Context, key domain.SessionKey, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[key.String()] = query
	return nil
}

// PendingQuery implements Store.
func (s *MemoryStore) PendingQuery(ctx context.Context, key domain.SessionKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.pending[key.String()]
	delete(s.pending, key.String())
	return q, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.pending = nil
	return nil
}

// live returns the session for k, dropping it if the TTL has lapsed.
// Callers must hold s.mu.
func (s *MemoryStore) live(k string) *memSession {
	sess, ok := s.sessions[k]
	if !ok {
		return nil
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, k)
		return nil
	}
	return sess
}
