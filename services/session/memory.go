package session

import (
	"context"
	"sync"
	"time"

	"medibook/models"
)

// MemoryStore keeps sessions in an in-process map with lazy TTL expiry.
// This is the default backend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
}

// NewMemoryStore creates an in-memory store. A non-positive ttl disables
// expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	if s.ttl > 0 && time.Since(sess.UpdatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	copy := *sess
	copy.History = append([]models.Turn(nil), sess.History...)
	return &copy, nil
}

func (s *MemoryStore) Put(_ context.Context, token string, sess *models.Session) error {
	copy := *sess
	copy.History = append([]models.Turn(nil), sess.History...)
	s.mu.Lock()
	s.sessions[token] = &copy
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
