package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/ports/kv"
)

type (
	putCmd struct {
		Key  string          `json:"key"`
		Data json.RawMessage `json:"data"`
	}

	getQry struct {
		Key string `json:"key"`
	}

	getRes struct {
		Data  json.RawMessage `json:"data,omitempty"`
		Found bool            `json:"found"`
	}
)

// Worker owns one shard's records. All operations for the keys hashed to
// this shard funnel through its mailbox, so they execute strictly in
// arrival order; that FIFO is the per-key ordering guarantee. The worker
// caches nothing: every get re-reads and every put re-writes the backing
// store.
type Worker struct {
	a     *actor.BaseActor
	shard int
}

type workerConfig struct {
	ctx          context.Context
	log          *slog.Logger
	shard        int
	store        kv.Store
	metrics      Metrics
	actorMetrics actor.Metrics
}

func newWorker(cfg workerConfig) *Worker {
	w := &Worker{shard: cfg.shard}

	w.a = actor.New(
		actor.Options{
			ID:      fmt.Sprintf("worker-%d", cfg.shard),
			Context: cfg.ctx,
			Logger:  cfg.log,
			Metrics: cfg.actorMetrics,
		},
		actor.TypedHandlers(
			actor.HandleCast[putCmd](func(hc actor.HandlerCtx, cmd putCmd) error {
				defer cfg.metrics.OpDuration("put").ObserveDuration()
				err := cfg.store.Put(hc, cmd.Key, cmd.Data)
				cfg.metrics.OpCompleted("put", err == nil)
				if err != nil {
					// A shard that cannot write is broken; terminate rather
					// than silently dropping mutations.
					return fmt.Errorf("%w: shard %d: put %s: %w", actor.ErrFatal, cfg.shard, cmd.Key, err)
				}
				return nil
			}),

			actor.HandleCall[getQry, getRes](func(hc actor.HandlerCtx, q getQry) (*getRes, error) {
				defer cfg.metrics.OpDuration("get").ObserveDuration()
				data, err := cfg.store.Get(hc, q.Key)
				if errors.Is(err, kv.ErrNotFound) {
					// absent is a valid result, not a failure
					cfg.metrics.OpCompleted("get", true)
					return &getRes{Found: false}, nil
				}
				cfg.metrics.OpCompleted("get", err == nil)
				if err != nil {
					return nil, fmt.Errorf("shard %d: get %s: %w", cfg.shard, q.Key, err)
				}
				return &getRes{Data: data, Found: true}, nil
			}),
		),
	)

	return w
}

// Shard returns the worker's shard index.
func (w *Worker) Shard() int { return w.shard }

// Send delivers an envelope to the worker's mailbox.
func (w *Worker) Send(ctx context.Context, e actor.Envelope) error {
	return w.a.Send(ctx, e)
}

// Done is closed when the worker terminates.
func (w *Worker) Done() <-chan struct{} { return w.a.Done() }

func (w *Worker) stop() { w.a.Stop() }
