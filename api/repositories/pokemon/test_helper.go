package repositories

import (
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pokeproxy/pkg/database/models"
)

var fixedDate = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int {
	return &v
}

// Seed a few records, ids are assigned in order starting at 1.
func seedPokemonTestData(t *testing.T, db *gorm.DB) []*models.Pokemon {
	t.Helper()

	pokemons := []*models.Pokemon{
		{Name: "bulbasaur", PokeId: intPtr(1), Data: datatypes.JSON(`{"id":1,"name":"bulbasaur"}`), CreatedAt: fixedDate},
		{Name: "charmander", PokeId: intPtr(4), CreatedAt: fixedDate},
		{Name: "custom", CreatedAt: fixedDate},
		{Name: "pikachu", PokeId: intPtr(25), Data: datatypes.JSON(`{"id":25,"name":"pikachu"}`), CreatedAt: fixedDate},
	}

	for _, p := range pokemons {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("Failed to seed pokemon %s: %v", p.Name, err)
		}
	}

	return pokemons
}

func countPokemons(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Pokemon{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count pokemons: %v", err)
	}
	return count
}

func names(pokemons []*models.Pokemon) []string {
	result := make([]string, 0, len(pokemons))
	for _, p := range pokemons {
		result = append(result, p.Name)
	}
	return result
}
