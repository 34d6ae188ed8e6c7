package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "stockgame:doc:"

// RedisStore implements Store with one JSON value per document under a
// stockgame key prefix. SET is atomic, so readers never observe a torn
// document.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(name string) string { return redisKeyPrefix + name }

func (s *RedisStore) Load(ctx context.Context, name string, out any) (bool, error) {
	data, err := s.rdb.Get(ctx, redisKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", name, err)
	}
	return true, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	if err := s.rdb.Set(ctx, redisKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	return nil
}
