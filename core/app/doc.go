// Package app assembles the to-do system: the sharded storage router, the
// registry of list servers and a resolving client.
//
// # Basic Usage
//
//	a, err := app.New(app.Config{
//	    Dir: "./data",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Stop()
//
//	srv, err := a.Client().List(ctx, "bob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = srv.Add(ctx, todo.Date("2026-08-30"), "dentist")
//	entries, _ := srv.Entries(ctx, todo.Date("2026-08-30"))
//
// Mutations are fire-and-forget: Add returns once the command is enqueued
// at the list's actor. Reads are synchronous and queue behind earlier
// mutations from the same caller, so a read observes that caller's prior
// writes.
//
// # Storage Backends
//
// With neither Dir nor OpenStore set, data lives in memory and dies with
// the app. Dir enables one file per list under per-shard directories. For
// anything else, provide OpenStore; the NATS JetStream adapter in
// adapters/nats is one such backend:
//
//	app.Config{
//	    OpenStore: func(shard int) (kv.Store, error) {
//	        return nats.NewKvStore(nats.KvConfig{
//	            Bucket:  fmt.Sprintf("todos-shard-%d", shard),
//	            Connect: connect,
//	        })
//	    },
//	}
package app
