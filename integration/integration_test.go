package integration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/todosrv-go/core/app"
	"github.com/codewandler/todosrv-go/core/todo"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.DiscardHandler)
}

// Full-stack walkthrough: resolve a list, mutate it, read it back filtered
// by date, all through the client.
func TestIntegration_basicFlow(t *testing.T) {
	a, err := app.New(app.Config{Log: testLogger(t)})
	require.NoError(t, err)
	defer a.Stop()

	ctx := t.Context()

	bob, err := a.Client().List(ctx, "bob")
	require.NoError(t, err)

	d1 := todo.Date("2026-08-30")
	d2 := todo.Date("2026-08-31")
	require.NoError(t, bob.Add(ctx, d1, "dentist"))
	require.NoError(t, bob.Add(ctx, d2, "shopping"))
	require.NoError(t, bob.Add(ctx, d1, "movies"))

	entries, err := bob.Entries(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].ID)
	require.Equal(t, "dentist", entries[0].Title)
	require.Equal(t, 3, entries[1].ID)
	require.Equal(t, "movies", entries[1].Title)

	require.NoError(t, bob.Delete(ctx, 1))
	entries, err = bob.Entries(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 3, entries[0].ID)

	require.NoError(t, bob.Update(ctx, 3, d1, "cinema"))
	entries, err = bob.Entries(ctx, d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cinema", entries[0].Title)
}

// Many goroutines resolving and mutating the same list concurrently must
// end up with exactly one server and all writes applied.
func TestIntegration_concurrentMutations(t *testing.T) {
	a, err := app.New(app.Config{Log: testLogger(t)})
	require.NoError(t, err)
	defer a.Stop()

	ctx := t.Context()
	date := todo.Date("2026-09-01")

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				srv, err := a.Client().List(ctx, "shared")
				require.NoError(t, err)
				require.NoError(t, srv.Add(ctx, date, fmt.Sprintf("task %d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	srv, err := a.Client().List(ctx, "shared")
	require.NoError(t, err)
	entries, err := srv.Entries(ctx, date)
	require.NoError(t, err)
	require.Len(t, entries, writers*perWriter)

	// IDs must be unique even under concurrent writers
	seen := map[int]bool{}
	for _, e := range entries {
		require.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
}

// A single sender's writes followed by a read observe all of the writes,
// even though mutations are fire-and-forget.
func TestIntegration_readAfterWrite(t *testing.T) {
	a, err := app.New(app.Config{Log: testLogger(t)})
	require.NoError(t, err)
	defer a.Stop()

	ctx := t.Context()
	date := todo.Date("2026-09-02")

	srv, err := a.Client().List(ctx, "burst")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, srv.Add(ctx, date, fmt.Sprintf("task %d", i)))
	}

	entries, err := srv.Entries(ctx, date)
	require.NoError(t, err)
	require.Len(t, entries, 100)
	for i, e := range entries {
		require.Equal(t, i+1, e.ID)
	}
}

// Restarting the whole app over the same data directory rebuilds the lists
// from disk, including the ID counter.
func TestIntegration_restartRehydrates(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	date := todo.Date("2026-09-03")

	a1, err := app.New(app.Config{Dir: dir, Log: testLogger(t)})
	require.NoError(t, err)

	srv, err := a1.Client().List(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, srv.Add(ctx, date, "one"))
	require.NoError(t, srv.Add(ctx, date, "two"))
	require.NoError(t, srv.Delete(ctx, 1))
	_, err = srv.Entries(ctx, date)
	require.NoError(t, err)
	a1.Stop()

	a2, err := app.New(app.Config{Dir: dir, Log: testLogger(t)})
	require.NoError(t, err)
	defer a2.Stop()

	srv2, err := a2.Client().List(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, srv2.Add(ctx, date, "three"))

	entries, err := srv2.Entries(ctx, date)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, entries[0].ID)
	require.Equal(t, "two", entries[0].Title)
	// id 1 was deleted before the restart and is not reused
	require.Equal(t, 3, entries[1].ID)
	require.Equal(t, "three", entries[1].Title)
}

// Lists are isolated: traffic on one list never leaks into another.
func TestIntegration_listIsolation(t *testing.T) {
	a, err := app.New(app.Config{Log: testLogger(t)})
	require.NoError(t, err)
	defer a.Stop()

	ctx := t.Context()
	date := todo.Date("2026-09-04")

	for i := 0; i < 10; i++ {
		srv, err := a.Client().List(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		for j := 0; j <= i; j++ {
			require.NoError(t, srv.Add(ctx, date, fmt.Sprintf("task %d", j)))
		}
	}

	for i := 0; i < 10; i++ {
		srv, err := a.Client().List(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		entries, err := srv.Entries(ctx, date)
		require.NoError(t, err)
		require.Len(t, entries, i+1)
	}
}
