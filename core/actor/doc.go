// Package actor provides a mailbox-based actor runtime for building
// concurrent, message-driven systems.
//
// Each actor owns private state, processes messages from a strictly FIFO
// mailbox in its own goroutine, and is reachable only through its handle.
// There is no shared memory between actors; the mailbox is the only
// serialization mechanism.
//
// # Creating actors
//
//	srv := actor.New(actor.Options{}, actor.TypedHandlers(
//	    actor.HandleCast[AddItem](func(hc actor.HandlerCtx, cmd AddItem) error {
//	        items = append(items, cmd.Name)
//	        return nil
//	    }),
//	    actor.HandleCall[ListItems, Items](func(hc actor.HandlerCtx, q ListItems) (*Items, error) {
//	        return &Items{Names: items}, nil
//	    }),
//	))
//
// # Sending messages
//
// [Call] is a synchronous request/response exchange. It blocks the caller
// (never the callee) until a response arrives or the deadline passes; when
// the caller's context carries no deadline, [DefaultCallTimeout] applies.
// A timed-out call returns [ErrTimeout] and does not cancel the in-flight
// work: the actor may still reply later into a buffered one-shot channel
// nobody reads, which is a safe no-op.
//
//	items, err := actor.Call[ListItems, Items](ctx, srv, ListItems{})
//
// [Cast] is fire-and-forget. It returns once the message is enqueued; the
// handler's eventual success or failure is unobservable to the caller.
//
//	err := actor.Cast(ctx, srv, AddItem{Name: "milk"})
//
// # Failure policy
//
// Unhandled input is a fatal defect, not a no-op: an actor that receives a
// message type with no registered handler, or whose handler panics or
// returns an error wrapping [ErrFatal], terminates without replying.
// Callers blocked in a Call against it observe ErrTimeout. Faults stay
// local to the failed actor.
//
// # Background tasks
//
// Handlers must not block the mailbox on slow side work. HandlerCtx.Schedule
// hands a task to the actor's [Scheduler], which runs it concurrently
// (bounded by Options.MaxScheduled) and contains its panics; termination
// waits for in-flight tasks before Done closes.
//
// # Lifecycle control
//
// Actors support pause/resume/step for tests and debugging:
//
//	srv.Pause()    // stop processing
//	srv.Step()     // process exactly one message
//	srv.Resume()   // continue
//	<-srv.Done()   // wait for termination
package actor
