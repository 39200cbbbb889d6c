package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"pokeproxy/pkg/database/models"
	"pokeproxy/pkg/pokeapi"
)

// Assert the expectations of all mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(mock.TestingT) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// ============================================================================
// Mock Implementations used on the Pokemon service tests.
// ============================================================================

type MockPokemonRepository struct {
	mock.Mock
}

func (m *MockPokemonRepository) Create(ctx context.Context, pokemon *models.Pokemon) error {
	args := m.Called(ctx, pokemon)
	return args.Error(0)
}

func (m *MockPokemonRepository) GetById(ctx context.Context, id uint) (*models.Pokemon, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) GetByPokeId(ctx context.Context, pokeId int) (*models.Pokemon, error) {
	args := m.Called(ctx, pokeId)
	return args.Get(0).(*models.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) List(ctx context.Context, limit int, offset int) ([]*models.Pokemon, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) Update(ctx context.Context, pokemon *models.Pokemon, fields map[string]any) error {
	args := m.Called(ctx, pokemon, fields)
	return args.Error(0)
}

func (m *MockPokemonRepository) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Mock Implementations used on the External service and importer tests.
// ============================================================================

type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) GetPokemon(ctx context.Context, key int) (json.RawMessage, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockUpstream) ListPokemons(ctx context.Context, limit int, offset int) (json.RawMessage, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockUpstream) FetchPokemon(ctx context.Context, key int) (*pokeapi.Pokemon, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(*pokeapi.Pokemon), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, pokeId int) error {
	args := m.Called(ctx, pokeId)
	return args.Error(0)
}
