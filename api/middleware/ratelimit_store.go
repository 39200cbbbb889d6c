package middleware

import (
	"context"
	"sync"
	"time"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// MemoryRateStore provides process-local rate limiting. It is concurrency-safe.
type MemoryRateStore struct {
	mu    sync.Mutex
	data  map[string]*memoryCounter
	tick  *time.Ticker
	done  chan struct{}
	once  sync.Once
	clock func() time.Time
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore constructs an in-memory rate store.
func NewMemoryRateStore() *MemoryRateStore {
	return newMemoryRateStore(time.Now)
}

func newMemoryRateStore(clock func() time.Time) *MemoryRateStore {
	store := &MemoryRateStore{
		data:  make(map[string]*memoryCounter),
		tick:  time.NewTicker(time.Minute),
		done:  make(chan struct{}),
		clock: clock,
	}

	go store.cleanupLoop()
	return store
}

func (s *MemoryRateStore) cleanupLoop() {
	for {
		select {
		case <-s.tick.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryRateStore) cleanup() {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, counter := range s.data {
		if !now.Before(counter.windowEnd) {
			delete(s.data, key)
		}
	}
}

func (s *MemoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.data[key]
	if !ok || !now.Before(counter.windowEnd) {
		counter = &memoryCounter{
			count:     0,
			windowEnd: now.Add(window),
		}
		s.data[key] = counter
	}

	counter.count++

	return counter.count, counter.windowEnd.Sub(now), nil
}

// Close stops the cleanup loop.
func (s *MemoryRateStore) Close() error {
	s.once.Do(func() {
		s.tick.Stop()
		close(s.done)
	})
	return nil
}

// CounterClient is the redis counter used by the shared rate store.
type CounterClient interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// redisRateStore shares the counters between API instances.
type redisRateStore struct {
	client CounterClient
	prefix string
}

// NewRedisRateStore wraps a redis client in a RateStore implementation.
func NewRedisRateStore(client CounterClient) RateStore {
	if client == nil {
		return nil
	}
	return &redisRateStore{client: client, prefix: "ratelimit:"}
}

func (s *redisRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.client.IncrementWithTTL(ctx, s.prefix+key, window)
	return int(count), ttl, err
}
