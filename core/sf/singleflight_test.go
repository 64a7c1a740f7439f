package sf

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSingleflight_dedup(t *testing.T) {
	type result struct{ N int }

	s := New[result]()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	out := make([]*result, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := s.Do("key", func() (*result, error) {
				calls.Add(1)
				<-release
				return &result{N: 7}, nil
			})
			require.NoError(t, err)
			out[i] = r
		}(i)
	}

	// let every goroutine reach Do before the single flight completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, r := range out {
		require.Same(t, out[0], r)
	}
}

func TestSingleflight_distinctKeys(t *testing.T) {
	type result struct{ K string }
	s := New[result]()

	a, err := s.Do("a", func() (*result, error) { return &result{K: "a"}, nil })
	require.NoError(t, err)
	b, err := s.Do("b", func() (*result, error) { return &result{K: "b"}, nil })
	require.NoError(t, err)

	require.Equal(t, "a", a.K)
	require.Equal(t, "b", b.K)
}
