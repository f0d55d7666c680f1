package scheduler

import (
	"context"
	"sync"
	"time"

	"ContentGate/internal/ports"
)

// Sweeper calls a job on a fixed interval. It drives the re-enqueue of
// verification runs stuck in pending.
type Sweeper struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*Sweeper)(nil)

// NewSweeper builds a sweeper ticking every interval. A non-positive
// interval disables it.
func NewSweeper(interval time.Duration) *Sweeper {
	return &Sweeper{interval: interval}
}

// Start begins ticking in the background.
func (s *Sweeper) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for an in-flight sweep.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	done := s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
