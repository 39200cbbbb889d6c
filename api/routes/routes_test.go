package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pokeproxy/api/cache"
	"pokeproxy/api/handlers"
	"pokeproxy/api/middleware"
	repotestutil "pokeproxy/api/repositories/testutil"
	externalservice "pokeproxy/api/services/external"
	pokemonservice "pokeproxy/api/services/pokemon"
	"pokeproxy/api/services/testutil"
	"pokeproxy/pkg/pokeapi"
)

const apiKey = "secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// Fake upstream serving pikachu, a 404 and a broken pokemon.
type fakeUpstream struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()

	f := &fakeUpstream{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		switch r.URL.Path {
		case "/pokemon/25":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":25,"name":"pikachu","height":4,"weight":60,"types":[{"slot":1,"type":{"name":"electric"}}],"sprites":{"front_default":"front.png"}}`))
		case "/pokemon":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"count":1,"results":[{"name":"pikachu"}]}`))
		case "/pokemon/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)

	return f
}

type testEnv struct {
	router     *Router
	upstream   *fakeUpstream
	dispatcher *testutil.MockDispatcher
}

// Build the whole router over sqlite, a fake upstream and a mocked dispatcher.
func setupRouter(t *testing.T, requests int) *testEnv {
	t.Helper()

	db := repotestutil.NewSqliteConnection(t)
	upstream := newFakeUpstream(t)
	dispatcher := new(testutil.MockDispatcher)

	store := cache.NewMemStore()
	t.Cleanup(func() { store.Close() })
	rateStore := middleware.NewMemoryRateStore()
	t.Cleanup(func() { rateStore.Close() })

	router := NewRouter(Options{
		ApiKey:    apiKey,
		RateStore: rateStore,
		Requests:  requests,
		Window:    time.Minute,
	})
	router.SetupRoutes(
		handlers.NewHealthHandler(nil),
		handlers.NewPokemonHandler(&handlers.PokemonHandlerDependencies{
			PokemonService: pokemonservice.NewPokemonService(&pokemonservice.PokemonServiceDeps{DB: db}),
		}),
		handlers.NewExternalHandler(&handlers.ExternalHandlerDependencies{
			ExternalService: externalservice.NewExternalService(&externalservice.ExternalServiceDeps{
				Upstream: pokeapi.NewClient(upstream.server.URL, 2*time.Second),
				Cache:    cache.NewExternalCache(store, time.Minute),
			}),
		}),
		handlers.NewImportHandler(&handlers.ImportHandlerDependencies{
			Dispatcher: dispatcher,
		}),
	)

	return &testEnv{router: router, upstream: upstream, dispatcher: dispatcher}
}

// Run a request with the api key.
func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	return e.doWithKey(method, path, body, apiKey)
}

func (e *testEnv) doWithKey(method, path, body, key string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}

	w := httptest.NewRecorder()
	e.router.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPokemonLifecycle(t *testing.T) {
	env := setupRouter(t, 100)

	w := env.do(http.MethodPost, "/pokemons", `{"name":"pikachu","poke_id":25,"data":{"height":4}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "pikachu", created["name"])
	assert.Equal(t, float64(25), created["poke_id"])
	assert.Nil(t, created["updated_at"])
	id := int(created["id"].(float64))

	w = env.do(http.MethodGet, "/pokemons/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pikachu", decode(t, w)["name"])

	w = env.do(http.MethodGet, "/pokemons/poke/25", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(id), decode(t, w)["id"])

	w = env.do(http.MethodPatch, "/pokemons/"+itoa(id), `{"name":"raichu"}`)
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode(t, w)
	assert.Equal(t, "raichu", patched["name"])
	assert.Equal(t, map[string]any{"height": float64(4)}, patched["data"])
	assert.NotNil(t, patched["updated_at"])

	w = env.do(http.MethodPut, "/pokemons/"+itoa(id), `{"name":"pichu"}`)
	require.Equal(t, http.StatusOK, w.Code)
	replaced := decode(t, w)
	assert.Equal(t, "pichu", replaced["name"])
	assert.Nil(t, replaced["data"])

	// The stored row matches the PUT response.
	w = env.do(http.MethodGet, "/pokemons/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["data"])

	w = env.do(http.MethodDelete, "/pokemons/"+itoa(id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = env.do(http.MethodDelete, "/pokemons/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = env.do(http.MethodGet, "/pokemons/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPokemonCollectionPaths(t *testing.T) {
	env := setupRouter(t, 100)

	for _, path := range []string{"/pokemons", "/pokemons/"} {
		w := env.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String())
	}

	w := env.do(http.MethodPost, "/pokemons/", `{"name":"custom"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w)["poke_id"])

	w = env.do(http.MethodGet, "/pokemons?limit=1&offset=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page, 1)
}

func TestPokemonConflict(t *testing.T) {
	env := setupRouter(t, 100)

	w := env.do(http.MethodPost, "/pokemons", `{"name":"pikachu","poke_id":25}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/pokemons", `{"name":"other","poke_id":25}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = env.do(http.MethodGet, "/pokemons", "")
	var page []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page, 1)
}

func TestPokemonInvalidRequests(t *testing.T) {
	env := setupRouter(t, 100)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		expected int
	}{
		{name: "missingname", method: http.MethodPost, path: "/pokemons", body: `{"poke_id":1}`, expected: http.StatusUnprocessableEntity},
		{name: "badpokeid", method: http.MethodPost, path: "/pokemons", body: `{"name":"x","poke_id":0}`, expected: http.StatusUnprocessableEntity},
		{name: "malformed", method: http.MethodPost, path: "/pokemons", body: `{"name":`, expected: http.StatusBadRequest},
		{name: "badlimit", method: http.MethodGet, path: "/pokemons?limit=0", expected: http.StatusUnprocessableEntity},
		{name: "badoffset", method: http.MethodGet, path: "/pokemons?offset=-1", expected: http.StatusUnprocessableEntity},
		{name: "badid", method: http.MethodGet, path: "/pokemons/abc", expected: http.StatusUnprocessableEntity},
		{name: "zeroid", method: http.MethodGet, path: "/pokemons/0", expected: http.StatusUnprocessableEntity},
		{name: "replacemissingname", method: http.MethodPut, path: "/pokemons/1", body: `{"data":{}}`, expected: http.StatusUnprocessableEntity},
		{name: "missingpokeid", method: http.MethodGet, path: "/pokemons/poke/404", expected: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expected, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestExternalPokemonCached(t *testing.T) {
	env := setupRouter(t, 100)

	first := env.do(http.MethodGet, "/external/pokemons/25", "")
	require.Equal(t, http.StatusOK, first.Code)
	data := decode(t, first)["data"].(map[string]any)
	assert.Equal(t, "pikachu", data["name"])

	second := env.do(http.MethodGet, "/external/pokemons/25", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), env.upstream.hits.Load())

	// The summary reads through the same entry.
	summary := env.do(http.MethodGet, "/external/pokemons/25?view=summary", "")
	require.Equal(t, http.StatusOK, summary.Code)
	assert.Equal(t, int32(1), env.upstream.hits.Load())
	summaryData := decode(t, summary)["data"].(map[string]any)
	assert.Equal(t, "pikachu", summaryData["name"])
	assert.Equal(t, []any{"electric"}, summaryData["types"])
}

func TestExternalPokemonErrors(t *testing.T) {
	env := setupRouter(t, 100)

	w := env.do(http.MethodGet, "/external/pokemons/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = env.do(http.MethodGet, "/external/pokemons/500", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode(t, w), "error")

	// Failures are never cached.
	env.do(http.MethodGet, "/external/pokemons/500", "")
	assert.Equal(t, int32(3), env.upstream.hits.Load())

	w = env.do(http.MethodGet, "/external/pokemons/25?view=full", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExternalUpstreamUnavailable(t *testing.T) {
	env := setupRouter(t, 100)
	env.upstream.server.Close()

	w := env.do(http.MethodGet, "/external/pokemons/25", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func TestExternalList(t *testing.T) {
	env := setupRouter(t, 100)

	for _, path := range []string{"/external/pokemons", "/external/pokemons/?limit=20&offset=0"} {
		w := env.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"data":{"count":1,"results":[{"name":"pikachu"}]}}`, w.Body.String())
	}
	assert.Equal(t, int32(1), env.upstream.hits.Load())

	w := env.do(http.MethodGet, "/external/pokemons?limit=101", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestImportQueued(t *testing.T) {
	env := setupRouter(t, 100)
	env.dispatcher.On("Dispatch", mock.Anything, 25).Return(nil).Once()

	w := env.do(http.MethodPost, "/imports/pokemons/25", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"queued","poke_id":25}`, w.Body.String())

	w = env.do(http.MethodPost, "/imports/pokemons/pikachu", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	testutil.VerifyAllMocks(t, env.dispatcher)
}

func TestUnauthorized(t *testing.T) {
	env := setupRouter(t, 1000)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/pokemons"},
		{http.MethodGet, "/pokemons/"},
		{http.MethodPost, "/pokemons"},
		{http.MethodGet, "/pokemons/1"},
		{http.MethodPut, "/pokemons/1"},
		{http.MethodPatch, "/pokemons/1"},
		{http.MethodDelete, "/pokemons/1"},
		{http.MethodGet, "/pokemons/poke/25"},
		{http.MethodGet, "/external/pokemons"},
		{http.MethodGet, "/external/pokemons/25"},
		{http.MethodPost, "/imports/pokemons/25"},
	}

	for _, key := range []string{"", "wrong", apiKey + " "} {
		for _, r := range requests {
			w := env.doWithKey(r.method, r.path, `{"name":"x"}`, key)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
		}
	}

	assert.Equal(t, int32(0), env.upstream.hits.Load())
}

func TestUnauthorizedNeverRateLimited(t *testing.T) {
	env := setupRouter(t, 2)

	for i := range 5 {
		w := env.doWithKey(http.MethodGet, "/pokemons", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "request %d", i)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	}

	// Rejected calls don't spend the client budget.
	for range 2 {
		w := env.do(http.MethodGet, "/pokemons", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodGet, "/pokemons", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.doWithKey(http.MethodDelete, "/pokemons/1", "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	env := setupRouter(t, 100)

	w := env.doWithKey(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.doWithKey(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.doWithKey(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pokeproxy_")
}

func TestRateLimited(t *testing.T) {
	env := setupRouter(t, 2)

	for range 2 {
		w := env.do(http.MethodGet, "/pokemons", "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodGet, "/pokemons", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are not limited.
	w = env.doWithKey(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := setupRouter(t, 100)

	w := env.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
