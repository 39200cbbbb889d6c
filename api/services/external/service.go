package externalservice

import (
	"context"
	"encoding/json"
	"fmt"

	"pokeproxy/api/cache"
	"pokeproxy/api/filters"
	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
	"pokeproxy/pkg/pokeapi"
)

// Upstream is the part of the upstream client used by the proxy reads.
type Upstream interface {
	GetPokemon(ctx context.Context, key int) (json.RawMessage, error)
	ListPokemons(ctx context.Context, limit int, offset int) (json.RawMessage, error)
}

// ExternalService serves the upstream reads through the cache-aside layer.
type ExternalService struct {
	upstream Upstream
	cache    *cache.ExternalCache
}

// ExternalServiceDeps is the dependency list for the external service.
type ExternalServiceDeps struct {
	Upstream Upstream
	Cache    *cache.ExternalCache
}

// NewExternalService creates the external service.
func NewExternalService(deps *ExternalServiceDeps) *ExternalService {
	return &ExternalService{
		upstream: deps.Upstream,
		cache:    deps.Cache,
	}
}

// ListPokemons returns a page of the upstream list wrapped as {"data": ...}.
func (es *ExternalService) ListPokemons(ctx context.Context, filter *filters.ExternalListFilter) (json.RawMessage, error) {
	if filter == nil {
		return nil, fmt.Errorf(messages.FiltersNotNil)
	}

	return es.cache.GetOrFetch(ctx, cache.ListKey(filter.Limit, filter.Offset), func(ctx context.Context) (json.RawMessage, error) {
		raw, err := es.upstream.ListPokemons(ctx, filter.Limit, filter.Offset)
		if err != nil {
			return nil, err
		}
		return wrapData(raw)
	})
}

// GetPokemon returns a single upstream pokemon wrapped as {"data": ...}.
func (es *ExternalService) GetPokemon(ctx context.Context, key int) (json.RawMessage, error) {
	return es.cache.GetOrFetch(ctx, cache.PokemonKey(key), func(ctx context.Context) (json.RawMessage, error) {
		raw, err := es.upstream.GetPokemon(ctx, key)
		if err != nil {
			return nil, err
		}
		return wrapData(raw)
	})
}

// GetPokemonSummary returns the reduced view of a single upstream pokemon.
// Reads through the same cache entry as GetPokemon.
func (es *ExternalService) GetPokemonSummary(ctx context.Context, key int) (json.RawMessage, error) {
	payload, err := es.GetPokemon(ctx, key)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}

	summary, err := pokeapi.Summarize(wrapped.Data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{"data": summary})
}

func wrapData(raw json.RawMessage) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]json.RawMessage{"data": raw})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	return payload, nil
}
