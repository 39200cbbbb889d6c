package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pokeproxy/api/services/testutil"
	inttestutil "pokeproxy/internal/testutil"
	"pokeproxy/pkg/database/models"
	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/pokeapi"
)

// Collects the job log lines.
type memoryJobLog struct {
	mu    sync.Mutex
	lines []string
}

func (m *memoryJobLog) Infof(format string, v ...any) {
	m.add("INFO: " + fmt.Sprintf(format, v...))
}

func (m *memoryJobLog) Errorf(format string, v ...any) {
	m.add("ERROR: " + fmt.Sprintf(format, v...))
}

func (m *memoryJobLog) add(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *memoryJobLog) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func setupImporter() (*Importer, *testutil.MockUpstream, *testutil.MockPokemonRepository, *memoryJobLog) {
	upstream := new(testutil.MockUpstream)
	repo := new(testutil.MockPokemonRepository)
	log := &memoryJobLog{}

	importer := NewImporter(&ImporterDeps{
		Fetcher:    upstream,
		Repository: repo,
		Logger:     log,
	})
	return importer, upstream, repo, log
}

func TestImportByPokeId(t *testing.T) {
	raw := json.RawMessage(`{"id":25,"name":"pikachu"}`)

	tests := []struct {
		name          string
		fetch         *inttestutil.OperationResult[*pokeapi.Pokemon]
		createErr     error
		shouldCreate  bool
		expectedCheck func(error) bool
		expectedLog   string
	}{
		{
			name:         "success",
			fetch:        inttestutil.NewSuccessResult(&pokeapi.Pokemon{ID: 25, Name: "pikachu", Raw: raw}),
			shouldCreate: true,
			expectedLog:  "INFO: import 25: stored pikachu as record 7",
		},
		{
			name:          "upstreamnotfound",
			fetch:         &inttestutil.OperationResult[*pokeapi.Pokemon]{Err: apperrors.ErrNotFound},
			expectedCheck: apperrors.IsNotFound,
			expectedLog:   "ERROR: import 25: fetch failed",
		},
		{
			name:          "duplicate",
			fetch:         inttestutil.NewSuccessResult(&pokeapi.Pokemon{ID: 25, Name: "pikachu", Raw: raw}),
			createErr:     apperrors.ErrConflict,
			shouldCreate:  true,
			expectedCheck: apperrors.IsConflict,
			expectedLog:   "ERROR: import 25: insert failed",
		},
		{
			name:          "databaseerror",
			fetch:         inttestutil.NewSuccessResult(&pokeapi.Pokemon{ID: 25, Name: "pikachu", Raw: raw}),
			createErr:     inttestutil.GetMockRepoError[*models.Pokemon]().Err,
			shouldCreate:  true,
			expectedCheck: func(err error) bool { return err != nil && err.Error() != "" },
			expectedLog:   "ERROR: import 25: insert failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer, upstream, repo, log := setupImporter()

			upstream.On("FetchPokemon", mock.Anything, 25).Return(tt.fetch.Data, tt.fetch.Err).Once()
			if tt.shouldCreate {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Pokemon) bool {
					return p.Name == "pikachu" && p.PokeId != nil && *p.PokeId == 25 && string(p.Data) == string(raw)
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Pokemon).ID = 7
				}).Return(tt.createErr).Once()
			}

			record, err := importer.ImportByPokeId(context.Background(), 25)
			testutil.VerifyAllMocks(t, upstream, repo)

			require.NotEmpty(t, log.all())
			assert.Contains(t, log.all()[0], tt.expectedLog)

			if tt.expectedCheck != nil {
				assert.True(t, tt.expectedCheck(err))
				assert.Nil(t, record)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, uint(7), record.ID)
		})
	}
}

func TestAsyncDispatcher(t *testing.T) {
	importer, upstream, repo, log := setupImporter()
	dispatcher := NewAsyncDispatcher(importer, time.Second)

	upstream.On("FetchPokemon", mock.Anything, 1).Return(&pokeapi.Pokemon{ID: 1, Name: "bulbasaur", Raw: json.RawMessage(`{}`)}, nil).Once()
	upstream.On("FetchPokemon", mock.Anything, 2).Return((*pokeapi.Pokemon)(nil), apperrors.ErrUpstream).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	// A cancelled request context doesn't stop the import.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Dispatch(ctx, 1))
	require.NoError(t, dispatcher.Dispatch(ctx, 2))
	cancel()

	require.NoError(t, dispatcher.Close())
	testutil.VerifyAllMocks(t, upstream, repo)
	assert.Len(t, log.all(), 2)
}
