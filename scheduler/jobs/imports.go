package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"pokeproxy/pkg/database/models"
	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/queue"
)

// How long a worker blocks on the queue before checking for shutdown.
const popTimeout = 5 * time.Second

// Pause after a queue failure, so a down redis isn't hammered.
var errorBackoff = time.Second

// JobSource yields the next import job.
type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.ImportJob, error)
}

// ImportRunner executes a single import.
type ImportRunner interface {
	ImportByPokeId(ctx context.Context, pokeId int) (*models.Pokemon, error)
}

// RunImportConsumer starts the workers and blocks until ctx is done and they return.
// Each worker handles one job at a time, failed jobs are dropped.
func RunImportConsumer(ctx context.Context, source JobSource, runner ImportRunner, workers int) {
	if workers < 1 {
		workers = 1
	}
	log := logger.WithModule("import-consumer")
	log.Info("starting import consumer", zap.Int("workers", workers))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			consume(ctx, source, runner, log.With(zap.Int("worker", worker)))
		}(w)
	}

	wg.Wait()
	log.Info("import consumer stopped")
}

func consume(ctx context.Context, source JobSource, runner ImportRunner, log *zap.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := source.Pop(ctx, popTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("couldn't read from the import queue", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}

		// The job finishes even when shutdown was requested meanwhile.
		if _, err := runner.ImportByPokeId(context.WithoutCancel(ctx), job.PokeId); err != nil {
			log.Warn("import failed", zap.Int("poke_id", job.PokeId), zap.Error(err))
			continue
		}
		log.Info("import finished", zap.Int("poke_id", job.PokeId))
	}
}
