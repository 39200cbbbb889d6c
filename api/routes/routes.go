package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokeproxy/api/handlers"
	"pokeproxy/api/middleware"
)

// Options configure the protected route group.
type Options struct {
	ApiKey    string
	RateStore middleware.RateStore
	Requests  int
	Window    time.Duration
}

type Router struct {
	engine    *gin.Engine
	public    *gin.RouterGroup
	protected *gin.RouterGroup
}

// NewRouter creates the engine with the middleware chain.
// Health checks and metrics are public, everything else needs the api key.
// The key is checked before the rate limit, so unauthenticated calls always get 401
// and never spend the client's budget.
func NewRouter(opts Options) *Router {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.HandleMethodNotAllowed = false

	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(),
	)
	engine.NoRoute(middleware.NotFoundHandler)

	public := engine.Group("")
	public.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := engine.Group("")
	protected.Use(
		middleware.APIKey(opts.ApiKey),
		middleware.RateLimit(opts.RateStore, opts.Requests, opts.Window),
	)

	return &Router{
		engine:    engine,
		public:    public,
		protected: protected,
	}
}

// Setup all the routes to the defined handlers.
func (r *Router) SetupRoutes(handlerList ...any) {
	for _, h := range handlerList {
		switch handler := h.(type) {
		case *handlers.PokemonHandler:
			r.registerPokemonHandler(handler)
		case *handlers.ExternalHandler:
			r.registerExternalHandler(handler)
		case *handlers.ImportHandler:
			r.registerImportHandler(handler)
		case *handlers.HealthHandler:
			r.registerHealthHandler(handler)
		}
	}
}

func (r *Router) registerPokemonHandler(handler *handlers.PokemonHandler) {
	pokemons := r.protected.Group("/pokemons")
	{
		// Both forms of the collection path are served.
		pokemons.GET("", handler.ListPokemons)
		pokemons.GET("/", handler.ListPokemons)
		pokemons.POST("", handler.CreatePokemon)
		pokemons.POST("/", handler.CreatePokemon)
		pokemons.GET("/:id", handler.GetPokemon)
		pokemons.PUT("/:id", handler.ReplacePokemon)
		pokemons.PATCH("/:id", handler.PatchPokemon)
		pokemons.DELETE("/:id", handler.DeletePokemon)
		pokemons.GET("/poke/:poke_id", handler.GetPokemonByPokeId)
	}
}

func (r *Router) registerExternalHandler(handler *handlers.ExternalHandler) {
	external := r.protected.Group("/external/pokemons")
	{
		external.GET("", handler.ListPokemons)
		external.GET("/", handler.ListPokemons)
		external.GET("/:poke_id", handler.GetPokemon)
	}
}

func (r *Router) registerImportHandler(handler *handlers.ImportHandler) {
	r.protected.POST("/imports/pokemons/:poke_id", handler.ImportPokemon)
}

func (r *Router) registerHealthHandler(handler *handlers.HealthHandler) {
	r.public.GET("/health", handler.Health)
	r.public.GET("/ready", handler.Ready)
}

// Handler exposes the engine for an http.Server.
func (r *Router) Handler() *gin.Engine {
	return r.engine
}

// Run the server.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
