package pokemonservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pokeproxy/api/dto"
	"pokeproxy/api/filters"
	pokemonrepo "pokeproxy/api/repositories/pokemon"
	"pokeproxy/pkg/database/models"
	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
)

// PokemonService validates and applies the record operations.
type PokemonService struct {
	db                *gorm.DB
	now               func() time.Time
	PokemonRepository pokemonrepo.PokemonRepository
}

// PokemonServiceDeps is the dependency list for the pokemon service.
type PokemonServiceDeps struct {
	DB *gorm.DB
}

// NewPokemonService creates a pokemon service.
func NewPokemonService(deps *PokemonServiceDeps) *PokemonService {
	return &PokemonService{
		db:                deps.DB,
		now:               time.Now,
		PokemonRepository: pokemonrepo.NewPokemonRepository(deps.DB),
	}
}

// Create a record, a duplicated poke_id is a conflict.
func (ps *PokemonService) Create(ctx context.Context, body dto.PokemonCreate) (*dto.Pokemon, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, apperrors.ErrValidation.WithMessage(messages.NameRequired)
	}

	pokemon := &models.Pokemon{
		Name:   name,
		PokeId: body.PokeId,
		Data:   toJSON(body.Data),
	}
	if err := ps.PokemonRepository.Create(ctx, pokemon); err != nil {
		return nil, err
	}

	return ToDTO(pokemon), nil
}

// Get a record by the internal id.
func (ps *PokemonService) Get(ctx context.Context, id uint) (*dto.Pokemon, error) {
	pokemon, err := ps.PokemonRepository.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(pokemon), nil
}

// GetByPokeId gets a record by the upstream id.
func (ps *PokemonService) GetByPokeId(ctx context.Context, pokeId int) (*dto.Pokemon, error) {
	pokemon, err := ps.PokemonRepository.GetByPokeId(ctx, pokeId)
	if err != nil {
		return nil, err
	}
	return ToDTO(pokemon), nil
}

// List a page of records.
func (ps *PokemonService) List(ctx context.Context, filter *filters.PokemonListFilter) ([]*dto.Pokemon, error) {
	if filter == nil {
		return nil, fmt.Errorf(messages.FiltersNotNil)
	}
	if filter.Limit < 1 {
		return nil, apperrors.ErrValidation.WithMessage("limit must be at least 1")
	}
	if filter.Offset < 0 {
		return nil, apperrors.ErrValidation.WithMessage("offset must not be negative")
	}

	pokemons, err := ps.PokemonRepository.List(ctx, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.Pokemon, 0, len(pokemons))
	for _, p := range pokemons {
		result = append(result, ToDTO(p))
	}
	return result, nil
}

// Replace sets every mutable field, the payload is cleared when absent.
func (ps *PokemonService) Replace(ctx context.Context, id uint, body dto.PokemonReplace) (*dto.Pokemon, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, apperrors.ErrValidation.WithMessage(messages.NameRequired)
	}

	fields := map[string]any{
		"name": name,
		"data": nil,
	}
	if data := toJSON(body.Data); data != nil {
		fields["data"] = data
	}

	return ps.update(ctx, id, fields)
}

// Patch changes only the non-null fields.
func (ps *PokemonService) Patch(ctx context.Context, id uint, body dto.PokemonPatch) (*dto.Pokemon, error) {
	fields := map[string]any{}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return nil, apperrors.ErrValidation.WithMessage(messages.NameRequired)
		}
		fields["name"] = name
	}
	if data := toJSON(body.Data); data != nil {
		fields["data"] = data
	}

	return ps.update(ctx, id, fields)
}

// Delete a record, returning if it existed.
func (ps *PokemonService) Delete(ctx context.Context, id uint) (bool, error) {
	return ps.PokemonRepository.Delete(ctx, id)
}

// Load the record so missing ids are reported before writing, then apply the fields.
func (ps *PokemonService) update(ctx context.Context, id uint, fields map[string]any) (*dto.Pokemon, error) {
	pokemon, err := ps.PokemonRepository.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	// created_at <= updated_at even with clock skew between the app and the database.
	now := ps.now().UTC()
	if now.Before(pokemon.CreatedAt) {
		now = pokemon.CreatedAt
	}
	fields["updated_at"] = now

	if err := ps.PokemonRepository.Update(ctx, pokemon, fields); err != nil {
		return nil, err
	}

	return ToDTO(pokemon), nil
}

// ToDTO converts the model to the response format.
func ToDTO(pokemon *models.Pokemon) *dto.Pokemon {
	var data json.RawMessage
	if len(pokemon.Data) > 0 {
		data = json.RawMessage(pokemon.Data)
	}

	return &dto.Pokemon{
		Id:        pokemon.ID,
		Name:      pokemon.Name,
		PokeId:    pokemon.PokeId,
		Data:      data,
		CreatedAt: pokemon.CreatedAt,
		UpdatedAt: pokemon.UpdatedAt,
	}
}

// Null or absent payloads are stored as NULL.
func toJSON(raw json.RawMessage) datatypes.JSON {
	if dto.IsNullJSON(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}
