// Package listsrv runs one actor per to-do list. The actor holds the
// list's current immutable value, hydrates itself from the storage router
// on first use, and mirrors every mutation back to it.
package listsrv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/store"
	"github.com/codewandler/todosrv-go/core/todo"
)

type (
	hydrateMsg struct{}

	addCmd struct {
		Date  todo.Date `json:"date"`
		Title string    `json:"title"`
	}

	updateCmd struct {
		ID    int       `json:"id"`
		Date  todo.Date `json:"date"`
		Title string    `json:"title"`
	}

	deleteCmd struct {
		ID int `json:"id"`
	}

	entriesQry struct {
		Date todo.Date `json:"date"`
	}

	entriesRes struct {
		Entries []todo.Entry `json:"entries"`
	}
)

// Config configures a list server.
type Config struct {
	Context context.Context
	Log     *slog.Logger

	// Name is the logical list name; also the persistence key.
	Name string

	// Router is the storage tier the server hydrates from and persists to.
	Router *store.Router

	Metrics actor.Metrics
}

// Server is the handle to one list's actor.
type Server struct {
	a    *actor.BaseActor
	name string
}

// New starts a list server. It returns immediately: the expensive load of
// the persisted list happens inside the actor, triggered by a hydration
// message enqueued here, before the handle is handed to anyone. That makes
// hydration the first message the actor processes; requests arriving later
// queue behind it in FIFO order and see the hydrated state.
func New(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("list name is required")
	}
	if cfg.Router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	var (
		name = cfg.Name
		list todo.List // owned by the actor loop after New returns
	)

	persist := func(hc actor.HandlerCtx, next todo.List) todo.List {
		// the persistence attempt and the state adoption are one step:
		// no mutation is adopted without its write having been issued
		if err := cfg.Router.Store(hc, name, next); err != nil {
			hc.Log().Warn("failed to issue persist", slog.Any("error", err))
		}
		return next
	}

	srv := &Server{name: name}
	srv.a = actor.New(
		actor.Options{
			ID:      "list/" + name,
			Context: cfg.Context,
			Logger:  cfg.Log.With(slog.String("list", name)),
			Metrics: cfg.Metrics,
		},
		actor.TypedHandlers(
			actor.HandleCast[hydrateMsg](func(hc actor.HandlerCtx, _ hydrateMsg) error {
				loaded, found, err := store.Fetch[todo.List](hc, cfg.Router, name)
				if err != nil {
					// Running on without the stored list would make the next
					// mutation overwrite it with a near-empty one and hand
					// out already-used IDs. Terminate; pending and later
					// requests time out and the stored list stays intact.
					return fmt.Errorf("%w: hydrate %s: %w", actor.ErrFatal, name, err)
				}
				if found {
					list = loaded
				}
				hc.Log().Debug("hydrated", slog.Bool("found", found), slog.Int("entries", list.Len()))
				return nil
			}),

			actor.HandleCast[addCmd](func(hc actor.HandlerCtx, cmd addCmd) error {
				list = persist(hc, list.Add(todo.Entry{Date: cmd.Date, Title: cmd.Title}))
				return nil
			}),

			actor.HandleCast[updateCmd](func(hc actor.HandlerCtx, cmd updateCmd) error {
				list = persist(hc, list.Update(cmd.ID, func(e todo.Entry) todo.Entry {
					e.Date = cmd.Date
					e.Title = cmd.Title
					return e
				}))
				return nil
			}),

			actor.HandleCast[deleteCmd](func(hc actor.HandlerCtx, cmd deleteCmd) error {
				list = persist(hc, list.Delete(cmd.ID))
				return nil
			}),

			actor.HandleCall[entriesQry, entriesRes](func(hc actor.HandlerCtx, q entriesQry) (*entriesRes, error) {
				// Serve from the last persisted value rather than the held
				// copy: slower, but reads never run ahead of storage.
				current, found, err := store.Fetch[todo.List](hc, cfg.Router, name)
				if err != nil {
					return nil, fmt.Errorf("entries %s: %w", name, err)
				}
				if !found {
					current = list
				}
				return &entriesRes{Entries: current.DueOn(q.Date)}, nil
			}),
		),
	)

	// Enqueued before the handle escapes: guaranteed first in the mailbox.
	if err := actor.Cast(cfg.Context, srv.a, hydrateMsg{}); err != nil {
		srv.a.Stop()
		return nil, fmt.Errorf("prime hydration for %s: %w", name, err)
	}

	return srv, nil
}

// Name returns the logical list name.
func (s *Server) Name() string { return s.name }

// Add appends a new entry. Fire-and-forget.
func (s *Server) Add(ctx context.Context, date todo.Date, title string) error {
	return actor.Cast(ctx, s.a, addCmd{Date: date, Title: title})
}

// Update replaces the date and title of the entry with the given id.
// Fire-and-forget; unknown ids are ignored.
func (s *Server) Update(ctx context.Context, id int, date todo.Date, title string) error {
	return actor.Cast(ctx, s.a, updateCmd{ID: id, Date: date, Title: title})
}

// Delete removes the entry with the given id. Fire-and-forget.
func (s *Server) Delete(ctx context.Context, id int) error {
	return actor.Cast(ctx, s.a, deleteCmd{ID: id})
}

// Entries returns the entries due on date, in insertion order.
func (s *Server) Entries(ctx context.Context, date todo.Date) ([]todo.Entry, error) {
	res, err := actor.Call[entriesQry, entriesRes](ctx, s.a, entriesQry{Date: date})
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// Done is closed when the server's actor terminates.
func (s *Server) Done() <-chan struct{} { return s.a.Done() }

// Stop shuts the server down.
func (s *Server) Stop() { s.a.Stop() }
