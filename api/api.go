package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pokeproxy/api/modules"
	"pokeproxy/api/routes"
	"pokeproxy/pkg/config"
	"pokeproxy/pkg/database"
	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't initialize the configuration: %v", err)
	}

	if err := logger.Init(cfg.Server.LogLevel); err != nil {
		log.Fatalf("Couldn't initialize the logger: %v", err)
	}
	defer logger.Sync()
	logr := logger.WithModule("api")

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		logr.Fatal("couldn't connect to the database", zap.Error(err))
	}

	rawDb, err := db.DB()
	if err != nil {
		logr.Fatal("couldn't get raw db connection", zap.Error(err))
	}
	if err := database.RunMigrations(cfg, rawDb); err != nil {
		logr.Fatal("couldn't run migrations", zap.Error(err))
	}

	// Redis is only reached when it backs the cache.
	var redisClient *redis.RedisClient
	if cfg.UseRedis() {
		redisClient, err = redis.NewClient(cfg.Redis.URL)
		if err != nil {
			logr.Fatal("couldn't create the redis client", zap.Error(err))
		}
	}

	module, err := modules.NewModule(&modules.ModuleDependencies{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
	})
	if err != nil {
		logr.Fatal("couldn't create the api module", zap.Error(err))
	}

	defer func() {
		closeErr := multierr.Combine(
			module.Close(),
			database.Close(db),
		)
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		if closeErr != nil {
			logr.Error("error while closing resources", zap.Error(closeErr))
		}
	}()

	router := routes.NewRouter(routes.Options{
		ApiKey:    cfg.Server.ApiKey,
		RateStore: module.RateStore,
		Requests:  cfg.RateLimit.Requests,
		Window:    cfg.RateLimit.Window,
	})
	router.SetupRoutes(
		module.HealthHandler,
		module.PokemonHandler,
		module.ExternalHandler,
		module.ImportHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("Starting api.", zap.String("addr", server.Addr), zap.String("cache_backend", cfg.Cache.Backend), zap.String("import_mode", cfg.Import.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down api.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
