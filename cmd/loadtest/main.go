package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/codewandler/todosrv-go/core/app"
	"github.com/codewandler/todosrv-go/core/todo"
)

// === Config ===

var (
	numLists   = getEnvInt("LISTS", 200)
	numOps     = getEnvInt("N", 50_000)
	numWorkers = getEnvInt("C", runtime.NumCPU()*4)
	numShards  = getEnvInt("SHARDS", 3)
	backend    = getEnv("BACKEND", "mem")
	dataDir    = getEnv("DIR", "")
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	ctx := context.Background()

	cfg := app.Config{Workers: numShards}
	switch backend {
	case "file":
		if dataDir == "" {
			dataDir, _ = os.MkdirTemp("", "todosrv-loadtest-")
		}
		cfg.Dir = dataDir
	case "mem":
	default:
		log.Fatalf("unknown backend %q", backend)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Stop()

	log.Infof("loadtest: %d ops over %d lists, %d goroutines, %d shards, backend=%s",
		numOps, numLists, numWorkers, numShards, backend)

	var done atomic.Int64
	var failed atomic.Int64
	work := make(chan int)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				list := fmt.Sprintf("list-%d", i%numLists)
				date := todo.Date(fmt.Sprintf("2026-09-%02d", 1+i%28))
				srv, err := a.Client().List(ctx, list)
				if err == nil {
					err = srv.Add(ctx, date, fmt.Sprintf("task %d", i))
				}
				if err != nil {
					failed.Add(1)
					continue
				}
				done.Add(1)
			}
		}()
	}

	for i := 0; i < numOps; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	// one read per list forces every write queue to drain
	for i := 0; i < numLists; i++ {
		srv, err := a.Client().List(ctx, fmt.Sprintf("list-%d", i))
		if err != nil {
			continue
		}
		if _, err := srv.Entries(ctx, todo.Date("2026-09-01")); err != nil {
			log.Warnf("drain list-%d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	log.Infof("done: %d ok, %d failed in %s (%.0f ops/s)",
		done.Load(), failed.Load(), elapsed, float64(done.Load())/elapsed.Seconds())
}
