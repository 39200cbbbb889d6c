// Package queue is a job queue over a Redis list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pokeproxy/pkg/redis"
)

// ErrEmpty is returned by Pop when no job arrived before the timeout.
var ErrEmpty = errors.New("queue is empty")

// ListClient is the part of the redis client used by the queue.
type ListClient interface {
	PushList(ctx context.Context, key string, value any) error
	PopList(ctx context.Context, key string, timeout time.Duration) (string, error)
}

// ImportJob asks the worker to import a pokemon by its upstream id.
type ImportJob struct {
	PokeId     int       `json:"poke_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue pushes and pops import jobs. FIFO.
type Queue struct {
	client ListClient
	key    string
}

// New creates a queue on the given list key.
func New(client ListClient, key string) *Queue {
	return &Queue{client: client, key: key}
}

// Key returns the list key.
func (q *Queue) Key() string {
	return q.key
}

// Push enqueues a job.
func (q *Queue) Push(ctx context.Context, job ImportJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.PushList(ctx, q.key, payload); err != nil {
		return fmt.Errorf("couldn't push job to %s: %w", q.key, err)
	}
	return nil
}

// Pop blocks up to timeout for the next job.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*ImportJob, error) {
	payload, err := q.client.PopList(ctx, q.key, timeout)
	if redis.IsNil(err) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	var job ImportJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("invalid job payload %q: %w", payload, err)
	}
	return &job, nil
}
