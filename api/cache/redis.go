package cache

import (
	"context"
	"time"

	"pokeproxy/pkg/redis"
)

// RedisStore keeps the cache entries on Redis.
type RedisStore struct {
	redis *redis.RedisClient
}

// NewRedisStore creates a store over the given client.
func NewRedisStore(client *redis.RedisClient) *RedisStore {
	return &RedisStore{redis: client}
}

// Get returns the cached value, ErrCacheMiss when absent.
func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := rs.redis.Get(ctx, key)
	if redis.IsNil(err) {
		return "", ErrCacheMiss
	}
	return value, err
}

// Set stores the value with the given ttl.
func (rs *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return rs.redis.Set(ctx, key, value, ttl)
}
