package modules

import (
	"pokeproxy/api/cache"
	"pokeproxy/api/handlers"
	externalservice "pokeproxy/api/services/external"
	"pokeproxy/pkg/pokeapi"
)

func initializeExternalHandler(deps *ModuleDependencies, store cache.Store) *handlers.ExternalHandler {
	cfg := deps.Config

	externalService := externalservice.NewExternalService(&externalservice.ExternalServiceDeps{
		Upstream: pokeapi.NewClient(cfg.PokeApi.BaseURL, cfg.PokeApi.Timeout),
		Cache:    cache.NewExternalCache(store, cfg.Cache.TTL),
	})

	return handlers.NewExternalHandler(&handlers.ExternalHandlerDependencies{
		ExternalService: externalService,
	})
}
