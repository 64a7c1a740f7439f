// Package reflector derives stable, fully qualified type names used for
// message dispatch. Lookups are cached since the set of message types in a
// program is small and fixed.
package reflector

import (
	"reflect"
	"sync"
)

// maxCacheSize bounds the cache. In practice the limit is never reached;
// when it is, the cache is dropped and rebuilt.
const maxCacheSize = 1024

var (
	mu    sync.RWMutex
	cache = make(map[reflect.Type]string)
)

// NameOf returns the qualified name ("pkg/path.TypeName") for the dynamic
// type of x. Pointer types resolve to their element type.
func NameOf(x any) string {
	return nameForType(reflect.TypeOf(x))
}

// NameFor returns the qualified name for the type parameter T.
func NameFor[T any]() string {
	return nameForType(reflect.TypeFor[T]())
}

func nameForType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	mu.RLock()
	name, ok := cache[t]
	mu.RUnlock()
	if ok {
		return name
	}

	name = t.PkgPath() + "." + t.Name()

	mu.Lock()
	if len(cache) >= maxCacheSize {
		cache = make(map[reflect.Type]string)
	}
	cache[t] = name
	mu.Unlock()

	return name
}
