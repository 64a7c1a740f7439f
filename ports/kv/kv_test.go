package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fruit struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	_, err := s.Get(t.Context(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Put(t.Context(), s, "apple", fruit{Name: "apple", Count: 10}))

	v, err := Get[fruit](t.Context(), s, "apple")
	require.NoError(t, err)
	require.Equal(t, fruit{Name: "apple", Count: 10}, v)

	require.NoError(t, s.Delete(t.Context(), "apple"))
	_, err = s.Get(t.Context(), "apple")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	// root is created if absent
	_, err = os.Stat(dir)
	require.NoError(t, err)

	_, err = s.Get(t.Context(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Put(t.Context(), s, "bob", fruit{Name: "pear", Count: 1}))

	// overwrite wins
	require.NoError(t, Put(t.Context(), s, "bob", fruit{Name: "pear", Count: 2}))

	v, err := Get[fruit](t.Context(), s, "bob")
	require.NoError(t, err)
	require.Equal(t, 2, v.Count)

	// a second store over the same root sees the data
	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	v, err = Get[fruit](t.Context(), s2, "bob")
	require.NoError(t, err)
	require.Equal(t, "pear", v.Name)

	require.NoError(t, s.Delete(t.Context(), "bob"))
	require.NoError(t, s.Delete(t.Context(), "bob")) // idempotent
	_, err = s.Get(t.Context(), "bob")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_keyEscaping(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	key := "week/plan..2026"
	require.NoError(t, s.Put(t.Context(), key, []byte(`{}`)))

	data, err := s.Get(t.Context(), key)
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), data)

	// nothing escaped the root
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].IsDir())
}
