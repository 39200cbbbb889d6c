package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	pokemonrepo "pokeproxy/api/repositories/pokemon"
	"pokeproxy/importer"
	"pokeproxy/pkg/config"
	"pokeproxy/pkg/database"
	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/pokeapi"
	"pokeproxy/pkg/queue"
	"pokeproxy/pkg/redis"
	"pokeproxy/scheduler/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't initialize the configuration: %v", err)
	}

	if err := logger.Init(cfg.Server.LogLevel); err != nil {
		log.Fatalf("Couldn't initialize the logger: %v", err)
	}
	defer logger.Sync()
	logr := logger.WithModule("scheduler")

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		logr.Fatal("couldn't connect to the database", zap.Error(err))
	}

	// Runs the migrations.
	rawDb, err := db.DB()
	if err != nil {
		logr.Fatal("couldn't get raw db connection", zap.Error(err))
	}
	if err := database.RunMigrations(cfg, rawDb); err != nil {
		logr.Fatal("couldn't run migrations", zap.Error(err))
	}

	redisClient, err := redis.NewClient(cfg.Redis.URL)
	if err != nil {
		logr.Fatal("couldn't create the redis client", zap.Error(err))
	}

	jobLogger, err := logger.NewJobLogger(cfg.Bucket)
	if err != nil {
		logr.Fatal("couldn't create the job logger", zap.Error(err))
	}

	defer func() {
		closeErr := multierr.Combine(
			jobLogger.Close(),
			redisClient.Close(),
			database.Close(db),
		)
		if closeErr != nil {
			logr.Error("error while closing resources", zap.Error(closeErr))
		}
	}()

	imp := importer.NewImporter(&importer.ImporterDeps{
		Fetcher:    pokeapi.NewClient(cfg.PokeApi.BaseURL, cfg.PokeApi.Timeout),
		Repository: pokemonrepo.NewPokemonRepository(db),
		Logger:     jobLogger,
	})

	logr.Info("Starting scheduler.")

	// Create a new scheduler with options.
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		logr.Fatal("failed to create scheduler", zap.Error(err))
	}

	// Ship the import log to the bucket periodically.
	_, err = s.NewJob(
		gocron.DurationJob(cfg.Bucket.UploadInterval),
		gocron.NewTask(
			jobs.UploadImportLogs,
			jobLogger,
		),
		gocron.WithName("import-log-upload"),
		gocron.WithTags("logs"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logr.Fatal("failed to create log upload job", zap.Error(err))
	}

	// Start the scheduler.
	s.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		jobs.RunImportConsumer(ctx, queue.New(redisClient, cfg.Import.QueueKey), imp, cfg.Import.Workers)
	}()

	// Wait for termination signal.
	<-ctx.Done()
	logr.Info("Shutting down scheduler...")
	<-consumerDone

	if err := s.Shutdown(); err != nil {
		logr.Error("error shutting down scheduler", zap.Error(err))
	}

	// Last upload so nothing logged before the shutdown is lost.
	if err := jobs.UploadImportLogs(jobLogger); err != nil {
		logr.Error("final log upload failed", zap.Error(err))
	}
}
