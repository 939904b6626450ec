// internal/sessionstore/redis.go
package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"screener/internal/common/errors"
	"screener/internal/common/logger"
	"screener/internal/models"
)

const keyPrefix = "screener:session:"

// RedisStore persists sessions as JSON documents under a per-session key.
// Every write refreshes the TTL, so a session expires only after the
// configured idle period.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "sessionstore"}),
	}
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	return s.Save(ctx, session)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, key(id)).Result()
	if err == redis.Nil {
		return nil, errors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	if err := s.client.Set(ctx, key(session.ID), payload, s.ttl).Err(); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}
