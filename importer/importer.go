// Package importer copies upstream pokemons into the record store out of band.
package importer

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	pokemonrepo "pokeproxy/api/repositories/pokemon"
	"pokeproxy/pkg/database/models"
	"pokeproxy/pkg/metrics"
	"pokeproxy/pkg/pokeapi"
)

// Fetcher is the part of the upstream client used by the importer.
type Fetcher interface {
	FetchPokemon(ctx context.Context, key int) (*pokeapi.Pokemon, error)
}

// JobLogger receives the import outcomes.
type JobLogger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// Importer fetches a single pokemon from upstream and stores it.
type Importer struct {
	fetcher    Fetcher
	repository pokemonrepo.PokemonRepository
	log        JobLogger
}

// ImporterDeps is the dependency list for the importer.
type ImporterDeps struct {
	Fetcher    Fetcher
	Repository pokemonrepo.PokemonRepository
	Logger     JobLogger
}

// NewImporter creates an importer.
func NewImporter(deps *ImporterDeps) *Importer {
	return &Importer{
		fetcher:    deps.Fetcher,
		repository: deps.Repository,
		log:        deps.Logger,
	}
}

// ImportByPokeId fetches the pokemon and inserts it as a new record.
// Failures are logged and returned, there is no retry.
func (i *Importer) ImportByPokeId(ctx context.Context, pokeId int) (*models.Pokemon, error) {
	pokemon, err := i.fetcher.FetchPokemon(ctx, pokeId)
	if err != nil {
		metrics.Imports.WithLabelValues("failure").Inc()
		i.log.Errorf("import %d: fetch failed: %v", pokeId, err)
		return nil, fmt.Errorf("import %d: %w", pokeId, err)
	}

	record := &models.Pokemon{
		Name:   pokemon.Name,
		PokeId: &pokeId,
		Data:   datatypes.JSON(pokemon.Raw),
	}
	if err := i.repository.Create(ctx, record); err != nil {
		metrics.Imports.WithLabelValues("failure").Inc()
		i.log.Errorf("import %d: insert failed: %v", pokeId, err)
		return nil, fmt.Errorf("import %d: %w", pokeId, err)
	}

	metrics.Imports.WithLabelValues("success").Inc()
	i.log.Infof("import %d: stored %s as record %d", pokeId, record.Name, record.ID)
	return record, nil
}
