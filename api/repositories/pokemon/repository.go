package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"pokeproxy/pkg/database/models"
	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
)

// PokemonRepository is the public interface for accessing the pokemon records.
type PokemonRepository interface {
	Create(ctx context.Context, pokemon *models.Pokemon) error
	GetById(ctx context.Context, id uint) (*models.Pokemon, error)
	GetByPokeId(ctx context.Context, pokeId int) (*models.Pokemon, error)
	List(ctx context.Context, limit int, offset int) ([]*models.Pokemon, error)
	Update(ctx context.Context, pokemon *models.Pokemon, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
}

// pokemonRepository repository structure.
type pokemonRepository struct {
	db *gorm.DB
}

// NewPokemonRepository creates a pokemon repository.
func NewPokemonRepository(db *gorm.DB) PokemonRepository {
	return &pokemonRepository{db: db}
}

// Create inserts the record, a duplicated poke_id is a conflict.
func (pr *pokemonRepository) Create(ctx context.Context, pokemon *models.Pokemon) error {
	err := pr.db.WithContext(ctx).Create(pokemon).Error
	if err == nil {
		return nil
	}

	if isUniqueConstraintError(err) {
		conflict := apperrors.ErrConflict
		if pokemon.PokeId != nil {
			conflict = conflict.WithMessage(messages.DuplicatedPokeId, *pokemon.PokeId)
		}
		return apperrors.Wrap(conflict, err)
	}
	return err
}

// GetById returns the record with the given internal id.
func (pr *pokemonRepository) GetById(ctx context.Context, id uint) (*models.Pokemon, error) {
	var pokemon models.Pokemon
	err := pr.db.WithContext(ctx).First(&pokemon, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrNotFound.WithMessage(messages.CouldNotFindId, id), err)
	}
	if err != nil {
		return nil, err
	}

	return &pokemon, nil
}

// GetByPokeId returns the record with the given upstream id.
func (pr *pokemonRepository) GetByPokeId(ctx context.Context, pokeId int) (*models.Pokemon, error) {
	var pokemon models.Pokemon
	err := pr.db.WithContext(ctx).Where("poke_id = ?", pokeId).First(&pokemon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrNotFound.WithMessage(messages.CouldNotFindPokeId, pokeId), err)
	}
	if err != nil {
		return nil, err
	}

	return &pokemon, nil
}

// List returns a page of records ordered by id.
func (pr *pokemonRepository) List(ctx context.Context, limit int, offset int) ([]*models.Pokemon, error) {
	pokemons := []*models.Pokemon{}
	err := pr.db.WithContext(ctx).
		Order("id asc").
		Limit(limit).
		Offset(offset).
		Find(&pokemons).Error
	if err != nil {
		return nil, err
	}

	return pokemons, nil
}

// Update changes only the given columns and reloads the record.
// The fields must already contain updated_at.
func (pr *pokemonRepository) Update(ctx context.Context, pokemon *models.Pokemon, fields map[string]any) error {
	db := pr.db.WithContext(ctx)

	result := db.Model(&models.Pokemon{}).Where("id = ?", pokemon.ID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage(messages.CouldNotFindId, pokemon.ID)
	}

	// Reload into a fresh value, First doesn't clear fields that became NULL.
	var fresh models.Pokemon
	if err := db.First(&fresh, pokemon.ID).Error; err != nil {
		return err
	}
	*pokemon = fresh
	return nil
}

// Delete removes the record, returning if it existed.
func (pr *pokemonRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := pr.db.WithContext(ctx).Delete(&models.Pokemon{}, id)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// isUniqueConstraintError checks the translated gorm error first, then the driver ones.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") || strings.Contains(lower, "duplicate key")
}
