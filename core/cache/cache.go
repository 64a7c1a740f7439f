// Package cache provides small key/value containers behind a common
// interface: an unbounded Map and a bounded LRU. Both are run by a single
// goroutine and accessed via channels, so they need no locks.
package cache

// Cache stores values by string key.
type Cache interface {
	Get(key string) (any, bool)
	Put(key string, val any)
	Delete(key string)
}

// TypedCache is a Cache with a concrete value type.
type TypedCache[T any] interface {
	Get(key string) (T, bool)
	Put(key string, val T)
	Delete(key string)
}

type typedCache[T any] struct {
	c Cache
}

// NewTyped wraps c with a typed accessor for T.
func NewTyped[T any](c Cache) TypedCache[T] { return &typedCache[T]{c: c} }

func (t *typedCache[T]) Get(key string) (out T, ok bool) {
	v, ok := t.c.Get(key)
	if !ok {
		return out, false
	}
	if out, ok = v.(T); !ok {
		return out, false
	}
	return out, true
}

func (t *typedCache[T]) Put(key string, val T) {
	t.c.Put(key, val)
}

func (t *typedCache[T]) Delete(key string) {
	t.c.Delete(key)
}

var _ TypedCache[any] = (*typedCache[any])(nil)
