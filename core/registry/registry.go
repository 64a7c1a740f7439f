// Package registry hands out one list server per logical name, creating
// them lazily. The registry is itself a single actor, so concurrent
// resolves for the same unseen name are serialized by its mailbox: the
// first processed creates the server, later ones find it in the map. No
// additional locking is involved.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/cache"
	"github.com/codewandler/todosrv-go/core/listsrv"
)

type resolveQry struct {
	Name string `json:"name"`
}

// Config configures a Registry.
type Config struct {
	Context context.Context
	Log     *slog.Logger

	// Create builds the server for a name on first resolve.
	Create func(name string) (*listsrv.Server, error)

	Metrics actor.Metrics
}

// Registry maps list names to running servers. Entries are created on
// demand and kept for the registry's lifetime; there is no eviction.
type Registry struct {
	a *actor.BaseActor
}

// New starts the registry actor.
func New(cfg Config) (*Registry, error) {
	if cfg.Create == nil {
		return nil, fmt.Errorf("create func is required")
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	// owned by the registry actor; accessed only from its loop
	servers := cache.NewTyped[*listsrv.Server](cache.NewMap())

	r := &Registry{}
	r.a = actor.New(
		actor.Options{
			ID:      "registry",
			Context: cfg.Context,
			Logger:  cfg.Log,
			Metrics: cfg.Metrics,
		},
		actor.TypedHandlers(
			actor.HandleCall[resolveQry, listsrv.Server](func(hc actor.HandlerCtx, q resolveQry) (*listsrv.Server, error) {
				if srv, ok := servers.Get(q.Name); ok {
					return srv, nil
				}
				srv, err := cfg.Create(q.Name)
				if err != nil {
					return nil, fmt.Errorf("create server for %s: %w", q.Name, err)
				}
				servers.Put(q.Name, srv)
				hc.Log().Debug("created list server", slog.String("list", q.Name))
				return srv, nil
			}),
		),
	)

	return r, nil
}

// Resolve returns the server for name, creating it on first use. Repeated
// and concurrent resolves for the same name return the same handle.
func (r *Registry) Resolve(ctx context.Context, name string) (*listsrv.Server, error) {
	return actor.Call[resolveQry, listsrv.Server](ctx, r.a, resolveQry{Name: name})
}

// Stop shuts down the registry actor. Servers it created keep running on
// their own context.
func (r *Registry) Stop() { r.a.Stop() }
