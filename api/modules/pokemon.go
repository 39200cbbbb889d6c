package modules

import (
	"pokeproxy/api/handlers"
	pokemonservice "pokeproxy/api/services/pokemon"
)

func initializePokemonHandler(deps *ModuleDependencies) *handlers.PokemonHandler {
	pokemonService := pokemonservice.NewPokemonService(&pokemonservice.PokemonServiceDeps{
		DB: deps.DB,
	})

	return handlers.NewPokemonHandler(&handlers.PokemonHandlerDependencies{
		PokemonService: pokemonService,
	})
}
