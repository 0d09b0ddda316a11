package store

import (
	"context"
	"sync"

	"fusebot/internal/auth/models"
)

// InMemoryStore keeps sessions in process memory. It backs tests and
// single-instance deployments that can tolerate losing sessions on restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemory constructs an empty in-memory session store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *InMemoryStore) Get(_ context.Context, roomID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[roomID]
	if !ok {
		return models.NewSession(roomID), nil
	}
	return session.Clone(), nil
}

func (s *InMemoryStore) Put(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.RoomID] = session.Clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, roomID)
	return nil
}
