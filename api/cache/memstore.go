package cache

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-process Store with per entry ttl.
type MemStore struct {
	items         sync.Map
	cleanupTicker *time.Ticker
	clock         func() time.Time
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Simple cache item.
type memStoreItem struct {
	value string
	ttl   time.Time
}

// NewMemStore creates a new memory store.
func NewMemStore() *MemStore {
	return newMemStore(time.Now)
}

func newMemStore(clock func() time.Time) *MemStore {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemStore{
		cancel:        cancel,
		cleanupTicker: time.NewTicker(5 * time.Minute),
		clock:         clock,
		ctx:           ctx,
	}
	mc.startCleanupWorker()

	return mc
}

// startCleanupWorker starts the background worker for memory cleaning.
func (mc *MemStore) startCleanupWorker() {
	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		for {
			select {
			case <-mc.cleanupTicker.C:
				mc.cleanup()
			case <-mc.ctx.Done():
				return
			}
		}
	}()
}

// cleanup go through each key and clean any expired key.
func (mc *MemStore) cleanup() {
	now := mc.clock()
	mc.items.Range(func(key, value any) bool {
		item := value.(*memStoreItem)
		if now.After(item.ttl) {
			mc.items.CompareAndDelete(key, value)
		}
		return true
	})
}

// Close shutdown the memory cache worker.
func (mc *MemStore) Close() error {
	mc.cancel()
	mc.cleanupTicker.Stop()
	mc.wg.Wait()
	return nil
}

// Get returns a key value, ErrCacheMiss when absent or expired.
func (mc *MemStore) Get(ctx context.Context, key string) (string, error) {
	value, exists := mc.items.Load(key)
	if !exists {
		return "", ErrCacheMiss
	}

	item := value.(*memStoreItem)

	// If the reset time was reached, remove the cache.
	if !mc.clock().Before(item.ttl) {
		mc.items.Delete(key)
		return "", ErrCacheMiss
	}

	return item.value, nil
}

// Set a given key on the cache.
func (mc *MemStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	mc.items.Store(key, &memStoreItem{
		value: value,
		ttl:   mc.clock().Add(ttl),
	})
	return nil
}
