package memory

import (
	"context"
	"sync"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Stores are shared by pointer, so Save only needs to remember them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Store
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Store),
	}
}

func (s *SessionStore) GetOrCreate(_ context.Context, sessionID string) (*app.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.sessions[sessionID]; ok {
		return store, nil
	}
	store := app.NewStore(sessionID)
	s.sessions[sessionID] = store
	return store, nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*app.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return store, nil
}

func (s *SessionStore) Save(_ context.Context, store *app.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[store.ID()] = store
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
