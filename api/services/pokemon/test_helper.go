package pokemonservice

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pokeproxy/api/services/testutil"
	"pokeproxy/pkg/database/models"
)

var (
	createdAt = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	updatedAt = time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
)

// Helper to initialize the mocks.
func setupTestService() (*PokemonService, *testutil.MockPokemonRepository) {
	mockRepo := new(testutil.MockPokemonRepository)

	service := &PokemonService{
		db:                new(gorm.DB),
		now:               func() time.Time { return updatedAt },
		PokemonRepository: mockRepo,
	}

	return service, mockRepo
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func pikachu() *models.Pokemon {
	return &models.Pokemon{
		ID:        1,
		Name:      "pikachu",
		PokeId:    intPtr(25),
		Data:      datatypes.JSON(`{"id":25}`),
		CreatedAt: createdAt,
	}
}
