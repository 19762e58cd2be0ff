package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// SessionStore keeps each quiz session as a JSON document in Redis so any
// server instance can serve the next request of a browser.
// Every Get returns a fresh copy; concurrent writers for one session are last-write-wins.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

type sessionRecord struct {
	State     domain.State      `json:"state"`
	Questions []domain.Question `json:"questions"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, sessionID string) (*app.Store, error) {
	store, err := s.Get(ctx, sessionID)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}
	store = app.NewStore(sessionID)
	if err := s.Save(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*app.Store, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var record sessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return app.RestoreStore(sessionID, record.State, record.Questions, record.UpdatedAt), nil
}

func (s *SessionStore) Save(ctx context.Context, store *app.Store) error {
	state, questions, updatedAt := store.Record()
	data, err := json.Marshal(sessionRecord{State: state, Questions: questions, UpdatedAt: updatedAt})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(store.ID()), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
