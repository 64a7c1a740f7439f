// Package sf is a typed wrapper around golang.org/x/sync/singleflight:
// concurrent calls with the same key collapse into one execution whose
// result every caller receives.
package sf

import "golang.org/x/sync/singleflight"

// Singleflight deduplicates concurrent calls per key for values of type T.
type Singleflight[T any] struct {
	group singleflight.Group
}

// New creates a Singleflight for type T.
func New[T any]() *Singleflight[T] {
	return &Singleflight[T]{}
}

// Do runs fn for key unless a call for the same key is already in flight,
// in which case it blocks and returns that call's result instead.
func (s *Singleflight[T]) Do(key string, fn func() (*T, error)) (*T, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
