// Package kv defines the key/value storage port used by the persistence
// workers, plus JSON helpers for typed access. Implementations: MemStore
// (in-memory, tests), FileStore (one file per key) and the NATS JetStream
// adapter in adapters/nats.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound reports that no record exists for a key. Readers treat it as
// "absent", not as a failure.
var ErrNotFound = errors.New("not found")

// Store is a minimal byte-oriented key/value store. Implementations must
// be safe for concurrent use; callers in this repo nonetheless serialize
// all access per key.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Put JSON-encodes v and stores it under key.
func Put[T any](ctx context.Context, store Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

// Get loads and JSON-decodes the value under key. Returns ErrNotFound when
// the key is absent. Encoding is symmetric with [Put]: a value written by
// Put decodes losslessly.
func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
