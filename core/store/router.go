// Package store is the sharded persistence tier. A Router actor owns a
// fixed pool of Worker actors and deterministically maps every key to one
// of them, so operations for the same key always execute in program order
// while different keys proceed in parallel on different workers.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/shard"
	"github.com/codewandler/todosrv-go/ports/kv"
)

// DefaultWorkers is the pool size used when Config.Workers is zero.
const DefaultWorkers = 3

type routeQry struct {
	Key string `json:"key"`
}

// Config configures a Router. The zero value works: three workers over
// per-shard in-memory stores.
type Config struct {
	Context context.Context
	Log     *slog.Logger

	// Workers fixes the pool size at construction. It never changes for
	// the lifetime of the router.
	Workers int

	// Sharder maps keys to [0, Workers). It must be deterministic and
	// pure; the per-key ordering guarantee rests on it. Defaults to
	// shard.Distributed(Workers).
	Sharder shard.Sharder

	// OpenStore opens the backing store for one shard. Each shard gets
	// its own store, so two workers never contend on the same record.
	// Defaults to independent in-memory stores.
	OpenStore func(shard int) (kv.Store, error)

	Metrics      Metrics
	ActorMetrics actor.Metrics
}

// Router routes persistence operations to the worker owning the key's
// shard. The shard table is built once at startup and never mutated.
type Router struct {
	a       *actor.BaseActor
	workers []*Worker
}

// New starts the worker pool and the router actor.
func New(cfg Config) (*Router, error) {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Sharder == nil {
		cfg.Sharder = shard.Distributed(cfg.Workers)
	}
	if cfg.OpenStore == nil {
		cfg.OpenStore = func(int) (kv.Store, error) { return kv.NewMemStore(), nil }
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics()
	}

	workers := make([]*Worker, cfg.Workers)
	for i := range workers {
		st, err := cfg.OpenStore(i)
		if err != nil {
			return nil, fmt.Errorf("open store for shard %d: %w", i, err)
		}
		workers[i] = newWorker(workerConfig{
			ctx:          cfg.Context,
			log:          cfg.Log,
			shard:        i,
			store:        st,
			metrics:      cfg.Metrics,
			actorMetrics: cfg.ActorMetrics,
		})
	}

	r := &Router{workers: workers}
	r.a = actor.New(
		actor.Options{
			ID:      "store-router",
			Context: cfg.Context,
			Logger:  cfg.Log,
			Metrics: cfg.ActorMetrics,
		},
		actor.TypedHandlers(
			actor.HandleCall[routeQry, Worker](func(hc actor.HandlerCtx, q routeQry) (*Worker, error) {
				return workers[cfg.Sharder.GetShardForKey(q.Key)], nil
			}),
		),
	)

	return r, nil
}

// RouteFor returns the worker owning key's shard. Deterministic for the
// lifetime of the router.
func (r *Router) RouteFor(ctx context.Context, key string) (*Worker, error) {
	return actor.Call[routeQry, Worker](ctx, r.a, routeQry{Key: key})
}

// Store resolves the key's worker and fires the write at it without
// waiting for the disk. v is JSON-encoded. Last write wins per key.
func (r *Router) Store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w, err := r.RouteFor(ctx, key)
	if err != nil {
		return err
	}
	return actor.Cast(ctx, w, putCmd{Key: key, Data: data})
}

// Fetch resolves the key's worker and reads the current record. found is
// false when no record exists.
func (r *Router) Fetch(ctx context.Context, key string) (data json.RawMessage, found bool, err error) {
	w, err := r.RouteFor(ctx, key)
	if err != nil {
		return nil, false, err
	}
	res, err := actor.Call[getQry, getRes](ctx, w, getQry{Key: key})
	if err != nil {
		return nil, false, err
	}
	return res.Data, res.Found, nil
}

// Fetch reads and JSON-decodes the record under key via r.
func Fetch[T any](ctx context.Context, r *Router, key string) (out T, found bool, err error) {
	data, found, err := r.Fetch(ctx, key)
	if err != nil || !found {
		return out, found, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// Stop shuts down the router and its workers.
func (r *Router) Stop() {
	r.a.Stop()
	for _, w := range r.workers {
		w.stop()
	}
}
