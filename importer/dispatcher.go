package importer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pokeproxy/pkg/logger"
	"pokeproxy/pkg/queue"
)

// Dispatcher triggers an import without waiting for it.
type Dispatcher interface {
	Dispatch(ctx context.Context, pokeId int) error
}

// QueueDispatcher enqueues the import for the worker process.
type QueueDispatcher struct {
	queue *queue.Queue
	now   func() time.Time
}

// NewQueueDispatcher creates a dispatcher over the import queue.
func NewQueueDispatcher(q *queue.Queue) *QueueDispatcher {
	return &QueueDispatcher{queue: q, now: time.Now}
}

// Dispatch pushes the job to the queue.
func (qd *QueueDispatcher) Dispatch(ctx context.Context, pokeId int) error {
	return qd.queue.Push(ctx, queue.ImportJob{PokeId: pokeId, EnqueuedAt: qd.now().UTC()})
}

// AsyncDispatcher runs the import on a goroutine of the current process.
type AsyncDispatcher struct {
	importer *Importer
	timeout  time.Duration
	wg       sync.WaitGroup
	log      *zap.Logger
}

// NewAsyncDispatcher creates an in-process dispatcher.
// Each import is bounded by timeout.
func NewAsyncDispatcher(importer *Importer, timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{
		importer: importer,
		timeout:  timeout,
		log:      logger.WithModule("importer"),
	}
}

// Dispatch starts the import detached from the request context.
func (ad *AsyncDispatcher) Dispatch(ctx context.Context, pokeId int) error {
	ad.wg.Add(1)
	go func() {
		defer ad.wg.Done()

		importCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ad.timeout)
		defer cancel()

		if _, err := ad.importer.ImportByPokeId(importCtx, pokeId); err != nil {
			ad.log.Warn("background import failed", zap.Int("poke_id", pokeId), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until the running imports finish.
func (ad *AsyncDispatcher) Wait() {
	ad.wg.Wait()
}

// Close waits for the running imports.
func (ad *AsyncDispatcher) Close() error {
	ad.Wait()
	return nil
}
