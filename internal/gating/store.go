// internal/gating/store.go
package gating

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
)

// RedisStore keeps sessions server-side so the counter survives client
// reloads and cannot be reset by clearing local storage.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, stderrors.NewSessionStoreFailedError(err)
	}

	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, stderrors.NewSessionStoreFailedError(err)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return stderrors.NewSessionStoreFailedError(err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return stderrors.NewSessionStoreFailedError(err)
	}
	return nil
}

// MemoryStore backs tests and single-instance deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}
