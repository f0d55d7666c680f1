package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

var (
	ErrQueueFull    = errors.New("verification queue is full")
	ErrQueueStopped = errors.New("verification queue is not running")
)

// WorkerQueue runs verification jobs on a fixed pool of goroutines. Jobs for
// the same item may run concurrently and in any order.
type WorkerQueue struct {
	workers int
	logger  *slog.Logger

	mu      sync.RWMutex
	jobs    chan domain.VerificationJob
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ ports.JobQueue = (*WorkerQueue)(nil)

// NewWorkerQueue builds a queue with the given pool and buffer sizes.
func NewWorkerQueue(workers, size int, logger *slog.Logger) *WorkerQueue {
	if workers <= 0 {
		workers = 2
	}
	if size <= 0 {
		size = 64
	}
	return &WorkerQueue{
		workers: workers,
		logger:  logger,
		jobs:    make(chan domain.VerificationJob, size),
	}
}

// Start launches the workers. Jobs get a context detached from ctx's
// cancellation so queued work still drains after shutdown begins; it is
// cancelled only when Stop gives up waiting.
func (q *WorkerQueue) Start(ctx context.Context, handler ports.JobHandler) error {
	if handler == nil {
		return fmt.Errorf("queue requires a job handler")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}
	if q.running {
		return nil
	}
	q.running = true
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.run(jobCtx, handler, job)
			}
		}()
	}
	return nil
}

// Enqueue hands a job to the pool without waiting for it to run.
func (q *WorkerQueue) Enqueue(job domain.VerificationJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueStopped
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains queued jobs and waits for the workers to exit. When ctx ends
// first, running jobs are cancelled and ctx's error is returned. A stopped
// queue cannot be started again.
func (q *WorkerQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.stopped = true
	close(q.jobs)
	cancel := q.cancel
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

func (q *WorkerQueue) run(ctx context.Context, handler ports.JobHandler, job domain.VerificationJob) {
	defer func() {
		if r := recover(); r != nil {
			q.log(slog.LevelError, "verification job panicked", "content_id", job.ContentID, "run", job.Run, "panic", r)
		}
	}()

	if err := handler.Handle(ctx, job); err != nil {
		q.log(slog.LevelWarn, "verification job failed", "content_id", job.ContentID, "run", job.Run, "error", err)
	}
}

func (q *WorkerQueue) log(level slog.Level, msg string, args ...any) {
	if q.logger != nil {
		q.logger.Log(context.Background(), level, msg, args...)
	}
}
