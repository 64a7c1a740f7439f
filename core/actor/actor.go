package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrStopped is returned by Send after an explicit Stop.
var ErrStopped = errors.New("actor stopped")

type (
	// OnPanic is invoked when a message handler panics, right before the
	// actor terminates.
	OnPanic func(recovered any, stack []byte, msgType string)

	// Actor is an opaque, copyable handle to a running actor's mailbox.
	Actor interface {
		Send(ctx context.Context, msg Envelope) error
		Stop()
		Pause() error
		Resume() error
		Step() error
		Done() <-chan struct{}
	}
)

// ---- control messages (internal) ----

type ctrlKind int

const (
	ctrlPause ctrlKind = iota
	ctrlResume
	ctrlEnableStep
	ctrlStep
	ctrlStop
)

type ctrlMsg struct {
	kind ctrlKind
}

// Options configures a new actor. The zero value is usable: every field
// has a default.
type Options struct {
	// ID names the actor in logs and metrics. Defaults to a nanoid.
	ID          string
	MailboxSize int
	ControlSize int
	Context     context.Context
	Logger      *slog.Logger
	Metrics     Metrics
	OnPanic     OnPanic

	// MaxScheduled caps concurrently running background tasks started via
	// HandlerCtx.Schedule. Zero or negative means unlimited.
	MaxScheduled int
}

// BaseActor is the runtime half of an actor: the mailbox, the control
// channel and the processing loop. State lives entirely inside the handler
// passed to New; no other code ever touches it.
type BaseActor struct {
	id  string
	ctx context.Context
	log *slog.Logger

	mailbox chan Envelope
	control chan ctrlMsg

	stop chan struct{}
	done chan struct{}

	mu     sync.Mutex
	closed bool

	metrics Metrics
	onPanic OnPanic
	sched   *scheduler
}

// New starts an actor: runs the handler's init to establish the starting
// state, then begins the message loop in its own goroutine. New returns
// immediately; from then on the loop exclusively owns the state.
func New(opt Options, handler RawHandler) *BaseActor {
	if opt.ID == "" {
		opt.ID = fmt.Sprintf("actor-%s", gonanoid.Must(8))
	}
	if opt.MailboxSize == 0 {
		opt.MailboxSize = 1024
	}
	if opt.ControlSize == 0 {
		opt.ControlSize = 16
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}

	log := opt.Logger.With(slog.String("actor", opt.ID))
	if opt.OnPanic == nil {
		opt.OnPanic = func(recovered any, stack []byte, msgType string) {
			log.Error("actor panicked",
				slog.Any("recovered", recovered),
				slog.String("msg_type", msgType),
				slog.String("stack", string(stack)),
			)
		}
	}

	a := &BaseActor{
		id:      opt.ID,
		ctx:     opt.Context,
		log:     log,
		mailbox: make(chan Envelope, opt.MailboxSize),
		control: make(chan ctrlMsg, opt.ControlSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		metrics: opt.Metrics,
		onPanic: opt.OnPanic,
	}
	a.sched = newScheduler(opt.Context, log, opt.MaxScheduled, a.id, a.metrics)

	hCtx := &handlerCtx{
		Context: opt.Context,
		log:     log,
		self:    a,
		sched:   a.sched,
	}

	go a.loop(hCtx, handler)
	return a
}

// ID returns the actor's identifier.
func (a *BaseActor) ID() string { return a.id }

// Done is closed when the actor terminates, whether by Stop, context
// cancellation or a fault.
func (a *BaseActor) Done() <-chan struct{} { return a.done }

// Stop requests shutdown and waits for the loop to exit. Idempotent.
// After Stop, Send fails with ErrStopped.
func (a *BaseActor) Stop() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	a.mu.Unlock()

	select {
	case a.control <- ctrlMsg{kind: ctrlStop}:
	default:
	}
	close(a.stop)
	<-a.done
}

// Send enqueues a message, blocking until it is enqueued, ctx is done or
// the actor was explicitly stopped. A fault-terminated actor still accepts
// sends; they are simply never processed, so calls against it time out.
func (a *BaseActor) Send(ctx context.Context, e Envelope) error {
	if a.isClosed() {
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("send failed: %w", ctx.Err())
	case <-a.stop:
		return ErrStopped
	case a.mailbox <- e:
		return nil
	}
}

// TrySend attempts a non-blocking enqueue.
func (a *BaseActor) TrySend(e Envelope) bool {
	if a.isClosed() {
		return false
	}
	select {
	case <-a.stop:
		return false
	case a.mailbox <- e:
		return true
	default:
		return false
	}
}

// Pause prevents further processing until Resume or Step.
func (a *BaseActor) Pause() error { return a.sendCtrl(ctrlPause) }

// Resume enables continuous processing (disables step mode).
func (a *BaseActor) Resume() error { return a.sendCtrl(ctrlResume) }

// EnableStepMode makes the actor process only when Step is called.
func (a *BaseActor) EnableStepMode() error { return a.sendCtrl(ctrlEnableStep) }

// Step permits exactly one message to be processed.
func (a *BaseActor) Step() error { return a.sendCtrl(ctrlStep) }

var _ Actor = (*BaseActor)(nil)

// ---- internals ----

func (a *BaseActor) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *BaseActor) sendCtrl(k ctrlKind) error {
	if a.isClosed() {
		return ErrStopped
	}
	select {
	case <-a.stop:
		return ErrStopped
	case a.control <- ctrlMsg{kind: k}:
		return nil
	}
}

// Scheduler exposes the actor's background task scheduler.
func (a *BaseActor) Scheduler() Scheduler { return a.sched }

func (a *BaseActor) loop(hc HandlerCtx, h RawHandler) {
	// drain background tasks before signalling termination
	defer close(a.done)
	defer a.sched.Wait()

	// execution state lives only in this goroutine
	paused := false
	stepMode := false
	permit := 1 // when >0, the actor may process one message; in run mode auto-renewed

	applyCtrl := func(c ctrlMsg) (cont bool) {
		switch c.kind {
		case ctrlStop:
			return false
		case ctrlPause:
			paused = true
			permit = 0
		case ctrlResume:
			paused = false
			stepMode = false
			if permit == 0 {
				permit = 1
			}
		case ctrlEnableStep:
			stepMode = true
			paused = true
			permit = 0
		case ctrlStep:
			permit++
		}
		return true
	}

	// control has priority over the mailbox
	drainControl := func() (cont bool) {
		for {
			select {
			case <-a.stop:
				return false
			case c := <-a.control:
				if !applyCtrl(c) {
					return false
				}
			default:
				return true
			}
		}
	}

	if err := h.InitHandler(hc); err != nil {
		a.log.Error("actor init failed", slog.Any("error", err))
		return
	}

	for {
		if !drainControl() {
			return
		}

		select {
		case <-hc.Done():
			return
		default:
		}

		// Without a permit, block until control arrives.
		if permit <= 0 {
			select {
			case <-a.stop:
				return
			case <-hc.Done():
				return
			case c := <-a.control:
				if !applyCtrl(c) {
					return
				}
			}
			continue
		}

		var handled bool
		select {
		case <-a.stop:
			return
		case <-hc.Done():
			return
		case c := <-a.control:
			if !applyCtrl(c) {
				return
			}
		case msg := <-a.mailbox:
			permit--
			res, err, fault := a.handle(hc, h, msg)
			if fault {
				// Fail fast: no reply is sent, so a pending call against
				// this actor observes a timeout, not a typed error.
				return
			}
			if msg.Reply != nil {
				msg.Reply <- Reply{Result: res, Error: err}
			} else if err != nil {
				a.log.Warn("cast handler failed",
					slog.String("msg_type", msg.Type),
					slog.Any("error", err),
				)
			}
			handled = true
		}

		a.metrics.MailboxDepth(a.id, len(a.mailbox))

		// Auto-renew the permit in continuous mode.
		if handled && !paused && !stepMode {
			permit++
		}
	}
}

// handle runs one message through the handler. fault reports a defect that
// terminates the actor: a handler panic or a message type nothing handles.
func (a *BaseActor) handle(hc HandlerCtx, h RawHandler, msg Envelope) (res any, err error, fault bool) {
	tmr := a.metrics.MessageDuration(msg.Type)
	defer tmr.ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			a.metrics.MessagePanic(msg.Type)
			a.onPanic(r, debug.Stack(), msg.Type)
			res, err, fault = nil, nil, true
		}
	}()

	res, err = h.HandleMessage(hc, msg.Type, msg.Data)
	if errors.Is(err, ErrUnhandled) || errors.Is(err, ErrFatal) {
		a.log.Error("fatal handler outcome, terminating",
			slog.String("msg_type", msg.Type),
			slog.Any("error", err),
		)
		a.metrics.MessageProcessed(msg.Type, false)
		return nil, err, true
	}
	a.metrics.MessageProcessed(msg.Type, err == nil)
	return res, err, false
}
