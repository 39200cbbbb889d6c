package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/messages"
	"pokeproxy/pkg/metrics"
)

// Fetcher loads the payload from the source of truth on a miss.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// ExternalCache is the cache-aside layer in front of the upstream reads.
type ExternalCache struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

// NewExternalCache creates the cache-aside layer over a store.
func NewExternalCache(store Store, ttl time.Duration) *ExternalCache {
	if store == nil {
		store = NoopStore{}
	}
	return &ExternalCache{
		store: store,
		ttl:   ttl,
		log:   logger.WithModule("cache"),
	}
}

// ListKey is the key of a page of the upstream list.
func ListKey(limit int, offset int) string {
	return fmt.Sprintf("external:pokemons:%d:%d", limit, offset)
}

// PokemonKey is the key of a single upstream pokemon.
func PokemonKey(key int) string {
	return fmt.Sprintf("external:pokemon:%d", key)
}

// GetOrFetch returns the cached payload for key, or fetches and stores it.
// Store failures are never returned, a failed lookup is a miss and a failed write is dropped.
// Fetch errors are returned as is and are never cached.
func (ec *ExternalCache) GetOrFetch(ctx context.Context, key string, fetch Fetcher) (json.RawMessage, error) {
	cached := lookup(ctx, ec.store, key)
	switch {
	case cached.Hit():
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return json.RawMessage(cached.Value), nil
	case cached.Failed():
		metrics.CacheLookups.WithLabelValues("error").Inc()
		ec.log.Warn(messages.CacheReadFailed, zap.String("key", key), zap.Error(cached.Err))
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if written := save(ctx, ec.store, key, string(payload), ec.ttl); written.Err != nil {
		metrics.CacheWriteErrors.Inc()
		ec.log.Warn(messages.CacheWriteFailed, zap.String("key", key), zap.Error(written.Err))
	}

	return payload, nil
}
