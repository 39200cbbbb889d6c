package modules

import (
	"io"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"pokeproxy/api/cache"
	"pokeproxy/api/handlers"
	"pokeproxy/api/middleware"
	"pokeproxy/pkg/config"
	"pokeproxy/pkg/redis"
)

// Module containing the necessary handlers.
type Module struct {
	RateStore       middleware.RateStore
	PokemonHandler  *handlers.PokemonHandler
	ExternalHandler *handlers.ExternalHandler
	ImportHandler   *handlers.ImportHandler
	HealthHandler   *handlers.HealthHandler

	closers []io.Closer
}

// ModuleDependencies are the shared resources owned by the API process.
// Redis is nil when no component is backed by it.
type ModuleDependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.RedisClient
}

// Create a new module with all the necessary handlers initialized.
func NewModule(deps *ModuleDependencies) (*Module, error) {
	module := &Module{}

	store := initializeCacheStore(deps, module)
	module.RateStore = initializeRateStore(deps, module)

	module.PokemonHandler = initializePokemonHandler(deps)
	module.ExternalHandler = initializeExternalHandler(deps, store)

	importHandler, err := initializeImportHandler(deps, module)
	if err != nil {
		module.Close()
		return nil, err
	}
	module.ImportHandler = importHandler
	module.HealthHandler = initializeHealthHandler(deps)

	return module, nil
}

// Close releases what the module created, in reverse order.
func (m *Module) Close() error {
	var err error
	for i := len(m.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, m.closers[i].Close())
	}
	m.closers = nil
	return err
}

func (m *Module) addCloser(c io.Closer) {
	m.closers = append(m.closers, c)
}

// The cache store follows the configured backend.
func initializeCacheStore(deps *ModuleDependencies, m *Module) cache.Store {
	switch deps.Config.Cache.Backend {
	case config.CacheBackendRedis:
		if deps.Redis != nil {
			return cache.NewRedisStore(deps.Redis)
		}
	case config.CacheBackendMemory:
		store := cache.NewMemStore()
		m.addCloser(store)
		return store
	}
	return cache.NoopStore{}
}

// Counters are shared through redis when it backs the cache, local otherwise.
func initializeRateStore(deps *ModuleDependencies, m *Module) middleware.RateStore {
	if deps.Config.UseRedis() && deps.Redis != nil {
		return middleware.NewRedisRateStore(deps.Redis)
	}
	store := middleware.NewMemoryRateStore()
	m.addCloser(store)
	return store
}
