package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNil is returned when a key doesn't exist.
var ErrNil = redis.Nil

// Type for the client.
type RedisClient struct {
	*redis.Client
}

// NewClient creates a client from a redis:// URL.
// The connection is lazy, use Ping to verify it.
func NewClient(url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.MaxRetries = 3
	opts.PoolSize = 100
	opts.MinIdleConns = 10
	opts.PoolTimeout = 30 * time.Second
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second

	return &RedisClient{
		Client: redis.NewClient(opts),
	}, nil
}

// Close the client connection.
func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// Ping checks if the server is reachable.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Wrapper to return the Result directly.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.Client.Get(ctx, key).Result()
}

// Wrapper to already return the .Err()
func (r *RedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// IncrementWithTTL increments the key, setting the window on the first hit.
// Returns the current count and the remaining ttl.
func (r *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// PushList prepends the value to the list.
func (r *RedisClient) PushList(ctx context.Context, key string, value any) error {
	return r.Client.LPush(ctx, key, value).Err()
}

// PopList blocks until a value is available on the list or the timeout expires.
// Returns ErrNil on timeout.
func (r *RedisClient) PopList(ctx context.Context, key string, timeout time.Duration) (string, error) {
	result, err := r.Client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		return "", err
	}
	if len(result) != 2 {
		return "", errors.New("unexpected BRPOP reply")
	}
	return result[1], nil
}

// IsNil reports if err means the key or list was empty.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
