package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/cache"
	"github.com/codewandler/todosrv-go/core/listsrv"
	"github.com/codewandler/todosrv-go/core/registry"
	"github.com/codewandler/todosrv-go/core/sf"
	"github.com/codewandler/todosrv-go/core/shard"
	"github.com/codewandler/todosrv-go/core/store"
	"github.com/codewandler/todosrv-go/ports/kv"
)

// Config configures an App. Zero values get defaults.
type Config struct {
	Context context.Context
	Log     *slog.Logger

	// ID names this instance in logs. Defaults to a nanoid suffix.
	ID string

	// Dir is the root directory for file-backed persistence. When set
	// (and OpenStore is not), each shard stores its records under
	// Dir/shard-<i>. When neither is set, storage is in-memory.
	Dir string

	// Workers is the storage shard count. Defaults to store.DefaultWorkers.
	Workers int

	// Sharder overrides the key-to-shard mapping.
	Sharder shard.Sharder

	// OpenStore overrides the backing store per shard.
	OpenStore func(shard int) (kv.Store, error)

	ActorMetrics actor.Metrics
	StoreMetrics store.Metrics
}

// App owns the storage router and the registry and hands out a Client.
type App struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       *slog.Logger

	router   *store.Router
	registry *registry.Registry
	client   *Client
}

// New wires up storage, registry and client. Call Stop to shut down.
func New(config Config) (app *App, err error) {
	if config.ID == "" {
		config.ID = fmt.Sprintf("todosrv-%s", gonanoid.Must(6))
	}
	if config.Log == nil {
		config.Log = slog.Default()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.OpenStore == nil && config.Dir != "" {
		dir := config.Dir
		config.OpenStore = func(shard int) (kv.Store, error) {
			return kv.NewFileStore(filepath.Join(dir, fmt.Sprintf("shard-%d", shard)))
		}
	}

	app = &App{}
	app.log = config.Log.With(slog.String("app", config.ID))
	app.ctx, app.cancelCtx = context.WithCancel(config.Context)

	app.router, err = store.New(store.Config{
		Context:      app.ctx,
		Log:          app.log,
		Workers:      config.Workers,
		Sharder:      config.Sharder,
		OpenStore:    config.OpenStore,
		Metrics:      config.StoreMetrics,
		ActorMetrics: config.ActorMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("start storage router: %w", err)
	}

	app.registry, err = registry.New(registry.Config{
		Context: app.ctx,
		Log:     app.log,
		Metrics: config.ActorMetrics,
		Create: func(name string) (*listsrv.Server, error) {
			return listsrv.New(listsrv.Config{
				Context: app.ctx,
				Log:     app.log,
				Name:    name,
				Router:  app.router,
				Metrics: config.ActorMetrics,
			})
		},
	})
	if err != nil {
		app.router.Stop()
		return nil, fmt.Errorf("start registry: %w", err)
	}

	app.client = &Client{
		reg:     app.registry,
		handles: cache.NewTyped[*listsrv.Server](cache.NewLRU(cache.LRUOpts{})),
		flight:  sf.New[listsrv.Server](),
	}

	app.log.Debug("app started",
		slog.Int("workers", config.Workers),
		slog.String("dir", config.Dir),
	)

	return app, nil
}

// Client returns the app's client.
func (a *App) Client() *Client { return a.client }

// Router exposes the storage tier, mainly for diagnostics.
func (a *App) Router() *store.Router { return a.router }

// Stop cancels the app context, terminating every actor it started.
func (a *App) Stop() {
	a.cancelCtx()
}

// Client resolves list servers by name. It keeps a local handle cache and
// collapses concurrent resolves for the same name into one registry call;
// the registry remains the authority on which handle a name maps to, so a
// cache miss or eviction only costs an extra round trip.
type Client struct {
	reg     *registry.Registry
	handles cache.TypedCache[*listsrv.Server]
	flight  *sf.Singleflight[listsrv.Server]
}

// List returns the server for the named list, creating it on first use.
func (c *Client) List(ctx context.Context, name string) (*listsrv.Server, error) {
	if srv, ok := c.handles.Get(name); ok {
		return srv, nil
	}
	return c.flight.Do(name, func() (*listsrv.Server, error) {
		srv, err := c.reg.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		c.handles.Put(name, srv)
		return srv, nil
	})
}
