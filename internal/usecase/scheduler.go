package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentGate/internal/ports"
)

// WorkerPool runs queued jobs through a handler.
type WorkerPool interface {
	Start(ctx context.Context, handler ports.JobHandler) error
	Stop(ctx context.Context) error
}

// SchedulerDeps wires background drivers with the use cases.
type SchedulerDeps struct {
	Pool       WorkerPool
	Driver     ports.Scheduler
	Verifier   *Verifier
	Pipeline   *Pipeline
	StaleAfter time.Duration
	Logger     *slog.Logger
}

// Scheduler starts the verification workers and the stale-run sweep.
type Scheduler struct {
	pool       WorkerPool
	driver     ports.Scheduler
	verifier   *Verifier
	pipeline   *Pipeline
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop background work.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	s := &Scheduler{
		pool:       deps.Pool,
		driver:     deps.Driver,
		verifier:   deps.Verifier,
		pipeline:   deps.Pipeline,
		staleAfter: deps.StaleAfter,
		logger:     deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Start launches the worker pool, then registers the sweep with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.pool != nil && s.verifier != nil {
		if err := s.pool.Start(ctx, s.verifier); err != nil {
			return err
		}
	}
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		n, err := s.pipeline.RequeueStale(ctx, s.staleAfter)
		if err != nil {
			s.logger.Warn("stale sweep failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info("requeued stale verifications", "count", n)
		}
	}
	return s.driver.Start(ctx, job)
}

// Stop halts the sweep first so it cannot enqueue into a closed pool.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver != nil {
		if err := s.driver.Stop(ctx); err != nil {
			return err
		}
	}
	if s.pool != nil {
		return s.pool.Stop(ctx)
	}
	return nil
}
