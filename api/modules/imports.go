package modules

import (
	"fmt"

	"pokeproxy/api/handlers"
	pokemonrepo "pokeproxy/api/repositories/pokemon"
	"pokeproxy/importer"
	"pokeproxy/pkg/config"
	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/pokeapi"
	"pokeproxy/pkg/queue"
)

// Imports go to the worker through the redis queue.
// Without redis they run inside the API process.
func initializeImportHandler(deps *ModuleDependencies, m *Module) (*handlers.ImportHandler, error) {
	cfg := deps.Config

	var dispatcher importer.Dispatcher
	if cfg.Import.Mode == config.ImportModeQueue && cfg.UseRedis() && deps.Redis != nil {
		dispatcher = importer.NewQueueDispatcher(queue.New(deps.Redis, cfg.Import.QueueKey))
	} else {
		jobLogger, err := logger.NewJobLogger(cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("couldn't create the import job logger: %w", err)
		}
		m.addCloser(jobLogger)

		imp := importer.NewImporter(&importer.ImporterDeps{
			Fetcher:    pokeapi.NewClient(cfg.PokeApi.BaseURL, cfg.PokeApi.Timeout),
			Repository: pokemonrepo.NewPokemonRepository(deps.DB),
			Logger:     jobLogger,
		})
		async := importer.NewAsyncDispatcher(imp, cfg.PokeApi.Timeout*2)
		m.addCloser(async)
		dispatcher = async
	}

	return handlers.NewImportHandler(&handlers.ImportHandlerDependencies{
		Dispatcher: dispatcher,
	}), nil
}
