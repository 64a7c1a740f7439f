package actor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/codewandler/todosrv-go/core/metrics"
)

// Scheduler runs tasks in the background, off the actor's message loop,
// with bounded concurrency. For work that must not stall the mailbox and
// whose outcome nobody waits for.
type Scheduler interface {
	// Schedule runs f in the background. Once the actor's context is
	// cancelled, Schedule is a no-op.
	Schedule(f func())
	// Wait blocks until all in-flight tasks complete.
	Wait()
}

type scheduler struct {
	ctx context.Context
	log *slog.Logger
	sem chan struct{}
	wg  sync.WaitGroup

	inflight metrics.Gauge
	finished func(success bool)
}

func newScheduler(ctx context.Context, log *slog.Logger, max int, actorID string, m Metrics) *scheduler {
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	return &scheduler{
		ctx:      ctx,
		log:      log,
		sem:      sem,
		inflight: m.SchedulerInflight(actorID),
		finished: func(success bool) { m.SchedulerTasks(actorID, success).Inc() },
	}
}

func (s *scheduler) Schedule(f func()) {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			select {
			case <-s.ctx.Done():
				return
			case s.sem <- struct{}{}:
			}
			defer func() { <-s.sem }()
		}

		s.inflight.Inc()
		defer s.inflight.Dec()
		s.run(f)
	}()
}

// run contains task panics: a background task is outside the mailbox, so
// it must not take the actor down with it.
func (s *scheduler) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			s.finished(false)
			s.log.Error("scheduled task panicked", slog.Any("recovered", r))
		}
	}()
	f()
	s.finished(true)
}

func (s *scheduler) Wait() { s.wg.Wait() }

var _ Scheduler = (*scheduler)(nil)
