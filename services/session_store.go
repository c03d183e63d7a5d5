package services

import (
	"context"
	"errors"
	"sync"

	"mockinterview/models"
)

var ErrSessionNotFound = errors.New("interview session not found")

// SessionStore holds in-progress interview sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

var _ SessionStore = (*MemorySessionStore)(nil)

func (m *MemorySessionStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemorySessionStore) Save(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
