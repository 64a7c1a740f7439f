package actor

import (
	"context"
	"log/slog"
)

// HandlerCtx is passed to every handler invocation. It is the actor's
// lifetime context and carries the actor's logger, a handle to the actor
// itself for self-sends (timers, priming messages), and a Scheduler for
// offloading work the message loop should not block on.
type HandlerCtx interface {
	context.Context
	Log() *slog.Logger
	Self() Actor
	// Schedule runs f in the background via the actor's [Scheduler].
	Schedule(f func())
}

type handlerCtx struct {
	context.Context
	log   *slog.Logger
	self  Actor
	sched Scheduler
}

func (hc *handlerCtx) Log() *slog.Logger { return hc.log }
func (hc *handlerCtx) Self() Actor       { return hc.self }
func (hc *handlerCtx) Schedule(f func()) { hc.sched.Schedule(f) }

var _ HandlerCtx = (*handlerCtx)(nil)
