// Package shard maps string keys onto a fixed number of shards. The only
// required property is determinism: the same key always lands on the same
// shard for the lifetime of the process.
package shard

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/crypto/blake2b"
)

// Func computes the shard index for a key.
type Func func(key string) int

// Sharder picks a shard for a key.
type Sharder interface {
	GetShardForKey(key string) int
}

type fnSharder struct {
	fn Func
}

func (s *fnSharder) GetShardForKey(key string) int { return s.fn(key) }

// NewSharder wraps a Func into a Sharder.
func NewSharder(fn Func) Sharder {
	return &fnSharder{fn: fn}
}

// ForKey returns the FNV-1a shard index of key in [0, shardCount).
func ForKey(key string, shardCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(shardCount))
}

// Distributed spreads keys uniformly over count shards using FNV-1a.
func Distributed(count int) Sharder {
	return NewSharder(func(key string) int {
		return ForKey(key, count)
	})
}

// Const sends every key to the same shard. Useful in tests.
func Const(shard int) Sharder {
	return NewSharder(func(key string) int {
		return shard
	})
}

// Seeded picks the shard with the highest rendezvous score for the key,
// personalized by seed so that distinct deployments sharing keys do not
// collide on the same distribution. Like Distributed it is deterministic
// and uniform; it costs one blake2b digest per shard.
func Seeded(count int, seed string) Sharder {
	return NewSharder(func(key string) int {
		best := 0
		var bestScore uint64
		for i := 0; i < count; i++ {
			if s := score(key, i, seed); s > bestScore || i == 0 {
				best = i
				bestScore = s
			}
		}
		return best
	})
}

func score(key string, shard int, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)

	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}

	h.Write([]byte(key))
	h.Write([]byte{0})

	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(shard))
	h.Write(idx[:])

	return binary.BigEndian.Uint64(h.Sum(nil))
}
