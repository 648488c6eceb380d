package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/certbible/certprep/internal/history"
	"github.com/redis/go-redis/v9"
)

// RedisResultStore keeps each learner's serialized history under one Redis
// string key.
type RedisResultStore struct {
	rdb *redis.Client
}

func NewRedisResultStore(rdb *redis.Client) *RedisResultStore {
	return &RedisResultStore{rdb: rdb}
}

func (s *RedisResultStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

func (s *RedisResultStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
