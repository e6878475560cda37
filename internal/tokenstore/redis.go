package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token under a single key, shared by every console
// instance pointed at the same Redis
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

// NewRedisStore returns a store using key on rdb
func NewRedisStore(rdb redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// Get returns the token, or "" if the key is absent
func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from redis: %w", err)
	}
	return token, nil
}

// Set stores the token without expiry; the upstream decides when it is stale
func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to write token to redis: %w", err)
	}
	return nil
}

// Clear deletes the key
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear token in redis: %w", err)
	}
	return nil
}
