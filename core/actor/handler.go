package actor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultCallTimeout applies to a Call whose context carries no deadline.
const DefaultCallTimeout = 5 * time.Second

var (
	// ErrTimeout is returned by Call when no response arrived in time.
	// It does not imply the receiver is dead.
	ErrTimeout = errors.New("call timed out")

	// ErrUnhandled reports a message type with no registered handler.
	// It is fatal to the receiving actor.
	ErrUnhandled = errors.New("unhandled message")

	// ErrFatal, when wrapped in a handler's returned error, terminates the
	// receiving actor like a panic would. For failures an actor cannot
	// meaningfully continue past.
	ErrFatal = errors.New("fatal handler error")
)

type (
	emptyOut struct{}

	// Reply carries the result of one message handler execution.
	Reply struct {
		Result any
		Error  error
	}

	// Envelope wraps a message for delivery to an actor's mailbox.
	// Reply is nil for casts; for calls it is a buffered one-shot channel.
	Envelope struct {
		Type  string
		Data  []byte // JSON-encoded payload
		Reply chan Reply
	}

	// RawHandler is the low-level message handling contract: InitHandler
	// computes the starting state, HandleMessage processes one message and
	// returns the response. Most actors use [TypedHandlers] instead of
	// implementing this directly.
	RawHandler interface {
		InitHandler(hc HandlerCtx) error
		HandleMessage(hc HandlerCtx, msgType string, data []byte) (any, error)
	}

	// MsgHandlerFunc is the signature of a registered message handler.
	MsgHandlerFunc func(hc HandlerCtx, msg any) (any, error)

	// HandlerInitFunc runs once when the actor starts, before any message.
	HandlerInitFunc func(hc HandlerCtx) error

	// HandlerRegistrar accepts handler registrations.
	HandlerRegistrar interface {
		Register(msgType string, typeFactory func() any, handle MsgHandlerFunc, init HandlerInitFunc)
	}

	// HandlerRegistration registers one or more handlers with a registrar.
	// Create these with [HandleCall], [HandleCast], [HandleEvery] or [Init].
	HandlerRegistration func(registrar HandlerRegistrar)
)

// TypedHandlerRegistry dispatches incoming messages to typed handlers by
// message type name.
type TypedHandlerRegistry struct {
	mu             sync.RWMutex
	inits          []HandlerInitFunc
	handlers       map[string]MsgHandlerFunc
	types          map[string]func() any
	defaultHandler MsgHandlerFunc
}

// TypedHandlers creates a handler registry from the given registrations.
// This is the primary way to define an actor's behavior.
func TypedHandlers(handlers ...HandlerRegistration) *TypedHandlerRegistry {
	t := &TypedHandlerRegistry{
		handlers: make(map[string]MsgHandlerFunc),
		types:    make(map[string]func() any),
	}
	for _, h := range handlers {
		h(t)
	}
	return t
}

// ToActor creates and starts an actor from this registry.
func (t *TypedHandlerRegistry) ToActor(opts Options) *BaseActor {
	return New(opts, t)
}

// Register adds a handler for a message type. Typically called indirectly
// via [HandleCall], [HandleCast], etc.
func (t *TypedHandlerRegistry) Register(msgType string, typeFactory func() any, handle MsgHandlerFunc, init HandlerInitFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msgType != "" {
		if handle != nil {
			t.handlers[msgType] = handle
		}
		if typeFactory != nil {
			t.types[msgType] = typeFactory
		}
	}
	if init != nil {
		t.inits = append(t.inits, init)
	}
}

// InitHandler runs all registered init funcs. Called by the actor on startup.
func (t *TypedHandlerRegistry) InitHandler(hc HandlerCtx) error {
	t.mu.Lock()
	if dh, ok := t.handlers["*"]; ok {
		t.defaultHandler = dh
	}
	inits := t.inits
	t.mu.Unlock()

	for _, i := range inits {
		if err := i(hc); err != nil {
			return fmt.Errorf("failed to init handler: %w", err)
		}
	}
	return nil
}

// HandleMessage dispatches one message to the handler registered for its
// type. A type nothing handles (and no default handler catches) yields
// [ErrUnhandled], which terminates the actor.
func (t *TypedHandlerRegistry) HandleMessage(hc HandlerCtx, msgType string, data []byte) (any, error) {
	t.mu.RLock()
	h, ok := t.handlers[msgType]
	factory := t.types[msgType]
	dh := t.defaultHandler
	t.mu.RUnlock()

	if !ok || factory == nil {
		if dh != nil {
			return dh(hc, data)
		}
		return nil, fmt.Errorf("%w: msg_type=%s", ErrUnhandled, msgType)
	}

	msg := factory()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msgType, err)
	}
	return h(hc, msg)
}

var _ RawHandler = (*TypedHandlerRegistry)(nil)

// DefaultHandler registers a fallback for message types without a specific
// handler. The raw payload is passed through undecoded. Registering a
// default handler opts the actor out of fail-fast on unknown types.
func DefaultHandler(h func(HandlerCtx, any) (any, error)) HandlerRegistration {
	return func(registrar HandlerRegistrar) {
		registrar.Register("*", func() any { return new(any) }, h, nil)
	}
}

// Init registers a function run when the actor starts, before any message
// is processed.
func Init(initFunc HandlerInitFunc) HandlerRegistration {
	return func(registrar HandlerRegistrar) {
		registrar.Register("", nil, nil, initFunc)
	}
}

// HandleOpts configures a handler registration.
type HandleOpts struct {
	// MessageType overrides the type name derived from the Go type.
	MessageType string
	// InitFunc runs during actor startup.
	InitFunc HandlerInitFunc
}

// HandleOption mutates HandleOpts.
type HandleOption func(*HandleOpts)

// WithMessageType overrides the message type name used for dispatch.
func WithMessageType(msgType string) HandleOption {
	return func(o *HandleOpts) { o.MessageType = msgType }
}

// WithInitFunc attaches an init function to the registration.
func WithInitFunc(init HandlerInitFunc) HandleOption {
	return func(o *HandleOpts) { o.InitFunc = init }
}

// HandleCall registers a request/response handler: the actor receives IN,
// returns *OUT, and the runtime sends the result back on the call's reply
// channel together with the handler error.
func HandleCall[IN any, OUT any](h func(hc HandlerCtx, in IN) (*OUT, error)) HandlerRegistration {
	return HandleCallWithOpts(h)
}

// HandleCallWithOpts is [HandleCall] with registration options.
func HandleCallWithOpts[IN any, OUT any](h func(hc HandlerCtx, in IN) (*OUT, error), opts ...HandleOption) HandlerRegistration {
	o := HandleOpts{MessageType: msgTypeFor[IN]()}
	for _, opt := range opts {
		opt(&o)
	}
	return func(registrar HandlerRegistrar) {
		registrar.Register(
			o.MessageType,
			func() any { return new(IN) },
			func(hc HandlerCtx, msg any) (any, error) {
				in, ok := msg.(*IN)
				if !ok {
					return nil, fmt.Errorf("invalid message payload for %s: %T", o.MessageType, msg)
				}
				out, err := h(hc, *in)
				if err != nil {
					return nil, err
				}
				return out, nil
			},
			o.InitFunc,
		)
	}
}

// HandleCast registers a fire-and-forget handler for IN. The handler's
// error, if any, is logged by the runtime; the sender never observes it.
func HandleCast[IN any](h func(hc HandlerCtx, in IN) error) HandlerRegistration {
	return HandleCastWithOpts(h)
}

// HandleCastWithOpts is [HandleCast] with registration options.
func HandleCastWithOpts[IN any](h func(hc HandlerCtx, in IN) error, opts ...HandleOption) HandlerRegistration {
	return HandleCallWithOpts[IN, emptyOut](func(hc HandlerCtx, in IN) (*emptyOut, error) {
		return nil, h(hc, in)
	}, opts...)
}

type tickMsg struct{ mt string }

func (m tickMsg) MsgType() string { return m.mt }

// HandleEvery registers a periodic task. Ticks are delivered through the
// mailbox, so they interleave with ordinary messages in FIFO order.
func HandleEvery(interval time.Duration, h func(hc HandlerCtx) error) HandlerRegistration {
	msg := tickMsg{mt: "tick/" + gonanoid.Must()}

	return HandleCastWithOpts[tickMsg](
		func(hc HandlerCtx, _ tickMsg) error { return h(hc) },
		WithMessageType(msg.MsgType()),
		WithInitFunc(func(hc HandlerCtx) error {
			go func() {
				tmr := time.NewTicker(interval)
				defer tmr.Stop()
				for {
					select {
					case <-hc.Done():
						return
					case <-tmr.C:
						if err := RawCast(hc, hc.Self(), msg.MsgType(), []byte("{}")); err != nil {
							hc.Log().Warn("failed to enqueue tick", slog.Any("error", err))
						}
					}
				}
			}()
			return nil
		}),
	)
}

type target interface {
	Send(ctx context.Context, msg Envelope) error
}

// Call sends IN to the target and blocks the caller until *OUT arrives or
// the deadline passes. Without a context deadline, [DefaultCallTimeout]
// applies. A deadline hit yields [ErrTimeout]; the receiver is not
// cancelled and a late reply goes nowhere.
func Call[IN any, OUT any](ctx context.Context, t target, msg IN) (*OUT, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	res, err := RawCall(ctx, t, msgTypeFor[IN](), data)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	out, ok := res.(*OUT)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T for %s", res, msgTypeFor[IN]())
	}
	return out, nil
}

// Cast sends IN to the target and returns once the message is enqueued.
// The handler outcome is unobservable to the caller.
func Cast[IN any](ctx context.Context, t target, msg IN) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return RawCast(ctx, t, msgTypeFor[IN](), data)
}

// RawCall is [Call] for pre-serialized payloads.
func RawCall(ctx context.Context, t target, msgType string, data []byte) (any, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	// Buffered so a reply sent after this call gave up does not block the actor.
	replyChan := make(chan Reply, 1)

	if err := t.Send(ctx, Envelope{Type: msgType, Data: data, Reply: replyChan}); err != nil {
		return nil, mapDeadline(err)
	}

	select {
	case <-ctx.Done():
		return nil, mapDeadline(ctx.Err())
	case reply := <-replyChan:
		return reply.Result, reply.Error
	}
}

// RawCast is [Cast] for pre-serialized payloads.
func RawCast(ctx context.Context, t target, msgType string, data []byte) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	return mapDeadline(t.Send(ctx, Envelope{Type: msgType, Data: data}))
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultCallTimeout)
}

func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
