package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc runs one refresh cycle and reports how many pairs it
// collected.
type RefreshFunc func(ctx context.Context) (int, error)

// Scheduler drives periodic refreshes on a background goroutine. It moves
// Stopped -> Running -> Stopped; Start on a running scheduler is a logged
// no-op and Stop blocks until the loop has exited. Cancellation is observed
// during the inter-cycle wait; an in-flight refresh runs to completion
// because it receives its own context, bounded by the sources' own request
// timeouts rather than the loop's cancel signal.
type Scheduler struct {
	Refresh  RefreshFunc
	Interval time.Duration
	Log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger()
	if s.cancel != nil {
		log.Warn("scheduler_already_running")
		return
	}
	if s.Interval <= 0 {
		s.Interval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	log.Info("scheduler_started", zap.Duration("interval", s.Interval))
}

// Stop requests cancellation and waits for the loop to exit. Calling Stop
// on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger().Info("scheduler_stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := s.logger()

	for {
		count, err := s.Refresh(context.Background())
		if err != nil {
			log.Error("refresh_failed", zap.Error(err))
		} else {
			log.Info("refresh_cycle", zap.Int("pairs", count))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}

func (s *Scheduler) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
