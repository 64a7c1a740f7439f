package listsrv

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/todosrv-go/core/actor"
	"github.com/codewandler/todosrv-go/core/store"
	"github.com/codewandler/todosrv-go/core/todo"
	"github.com/codewandler/todosrv-go/ports/kv"
)

const (
	d1 = todo.Date("2026-08-30")
	d2 = todo.Date("2026-08-31")
)

func newTestServer(t *testing.T, name string, r *store.Router) *Server {
	s, err := New(Config{Context: t.Context(), Name: name, Router: r})
	require.NoError(t, err)
	return s
}

func newTestRouter(t *testing.T) *store.Router {
	r, err := store.New(store.Config{Context: t.Context()})
	require.NoError(t, err)
	return r
}

func TestServer_addAndEntries(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "alice", r)

	require.NoError(t, s.Add(t.Context(), d1, "Dentist"))
	require.NoError(t, s.Add(t.Context(), d2, "Shopping"))
	require.NoError(t, s.Add(t.Context(), d1, "Movies"))

	entries, err := s.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, todo.Entry{ID: 1, Date: d1, Title: "Dentist"}, entries[0])
	require.Equal(t, todo.Entry{ID: 3, Date: d1, Title: "Movies"}, entries[1])

	entries, err = s.Entries(t.Context(), d2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, todo.Entry{ID: 2, Date: d2, Title: "Shopping"}, entries[0])
}

func TestServer_delete(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "alice", r)

	require.NoError(t, s.Add(t.Context(), d1, "Dentist"))
	require.NoError(t, s.Add(t.Context(), d2, "Shopping"))
	require.NoError(t, s.Delete(t.Context(), 2))

	entries, err := s.Entries(t.Context(), d2)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestServer_update(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "alice", r)

	require.NoError(t, s.Add(t.Context(), d1, "Dentist"))
	require.NoError(t, s.Update(t.Context(), 1, d2, "Dentist (moved)"))

	entries, err := s.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, err = s.Entries(t.Context(), d2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Dentist (moved)", entries[0].Title)
	require.Equal(t, 1, entries[0].ID)
}

func TestServer_hydratesFromStorage(t *testing.T) {
	r := newTestRouter(t)

	seed := todo.Empty().Add(todo.Entry{Date: d1, Title: "Persisted"})
	require.NoError(t, r.Store(t.Context(), "bob", seed))

	s := newTestServer(t, "bob", r)

	// mutations issued right after New queue behind the hydration message,
	// so they apply on top of the loaded state
	require.NoError(t, s.Add(t.Context(), d1, "Fresh"))

	entries, err := s.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Persisted", entries[0].Title)
	require.Equal(t, 1, entries[0].ID)
	require.Equal(t, "Fresh", entries[1].Title)
	require.Equal(t, 2, entries[1].ID)
}

func TestServer_mutationsAreMirroredToStorage(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "carol", r)

	require.NoError(t, s.Add(t.Context(), d1, "Dentist"))

	// the Entries call drains the write queue, after which a second server
	// over the same router hydrates the persisted value
	_, err := s.Entries(t.Context(), d1)
	require.NoError(t, err)

	s2 := newTestServer(t, "carol", r)
	entries, err := s2.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Dentist", entries[0].Title)
}

func TestServer_orderingUnderBurst(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "dave", r)

	for i := 0; i < 50; i++ {
		require.NoError(t, s.Add(t.Context(), d1, "task"))
	}

	entries, err := s.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 50)
	for i, e := range entries {
		require.Equal(t, i+1, e.ID)
	}
}

type flakyStore struct {
	inner    kv.Store
	getFails atomic.Int32
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	return f.inner.Put(ctx, key, data)
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getFails.Add(-1) >= 0 {
		return nil, fmt.Errorf("transient read failure")
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

func TestServer_hydrationFailureIsFatal(t *testing.T) {
	flaky := &flakyStore{inner: kv.NewMemStore()}
	r, err := store.New(store.Config{
		Context:   t.Context(),
		Workers:   1,
		OpenStore: func(int) (kv.Store, error) { return flaky, nil },
	})
	require.NoError(t, err)

	require.NoError(t, r.Store(t.Context(), "bob", todo.Empty().Add(todo.Entry{Date: d1, Title: "Persisted"})))
	_, found, err := r.Fetch(t.Context(), "bob")
	require.NoError(t, err)
	require.True(t, found)

	// the next storage read fails once; the server hydrating through it
	// must die rather than adopt an empty list
	flaky.getFails.Store(1)
	s := newTestServer(t, "bob", r)
	require.NoError(t, s.Add(t.Context(), d1, "Fresh"))

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("server survived a failed hydration")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	_, err = s.Entries(ctx, d1)
	require.ErrorIs(t, err, actor.ErrTimeout)

	// the stored list is untouched: a later server sees the persisted
	// entry under its original ID and the queued mutation never applied
	s2 := newTestServer(t, "bob", r)
	entries, err := s2.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, todo.Entry{ID: 1, Date: d1, Title: "Persisted"}, entries[0])

	require.NoError(t, s2.Add(t.Context(), d1, "Fresh"))
	entries, err = s2.Entries(t.Context(), d1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, entries[1].ID)
}

func TestServer_requiresNameAndRouter(t *testing.T) {
	r := newTestRouter(t)

	_, err := New(Config{Context: t.Context(), Router: r})
	require.Error(t, err)

	_, err = New(Config{Context: t.Context(), Name: "x"})
	require.Error(t, err)
}

func TestServer_stop(t *testing.T) {
	r := newTestRouter(t)
	s := newTestServer(t, "erin", r)
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
