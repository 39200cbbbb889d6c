package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by a Store when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is the key-value store behind the cache-aside layer.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Result wraps the outcome of a store operation.
// Callers decide explicitly what to do with Err.
type Result[T any] struct {
	Value T
	Err   error
}

// Hit reports a successful lookup.
func (r Result[T]) Hit() bool {
	return r.Err == nil
}

// Miss reports a lookup that found nothing, without store failure.
func (r Result[T]) Miss() bool {
	return errors.Is(r.Err, ErrCacheMiss)
}

// Failed reports a store failure.
func (r Result[T]) Failed() bool {
	return r.Err != nil && !r.Miss()
}

func lookup(ctx context.Context, store Store, key string) Result[string] {
	value, err := store.Get(ctx, key)
	return Result[string]{Value: value, Err: err}
}

func save(ctx context.Context, store Store, key string, value string, ttl time.Duration) Result[struct{}] {
	return Result[struct{}]{Err: store.Set(ctx, key, value, ttl)}
}

// NoopStore is used when caching is disabled. Every lookup is a miss.
type NoopStore struct{}

// Get always misses.
func (NoopStore) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

// Set discards the value.
func (NoopStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}
