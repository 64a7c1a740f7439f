package shard

import (
	"fmt"
	"testing"
)

func TestForKey_deterministic(t *testing.T) {
	for _, key := range []string{"a", "b", "c"} {
		want := ForKey(key, 3)
		for i := 0; i < 100; i++ {
			if got := ForKey(key, 3); got != want {
				t.Fatalf("ForKey(%q) = %d, want %d on repeat %d", key, got, want, i)
			}
		}
	}
}

func TestForKey_inRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", i)
		if s := ForKey(key, 7); s < 0 || s >= 7 {
			t.Fatalf("ForKey(%q) = %d out of range", key, s)
		}
	}
}

func TestDistributed_spreads(t *testing.T) {
	counts := make(map[int]int)
	s := Distributed(3)
	for i := 0; i < 3000; i++ {
		counts[s.GetShardForKey(fmt.Sprintf("key-%d", i))]++
	}
	for shard := 0; shard < 3; shard++ {
		if counts[shard] == 0 {
			t.Fatalf("shard %d received no keys", shard)
		}
	}
}

func TestConst(t *testing.T) {
	s := Const(2)
	for i := 0; i < 10; i++ {
		if got := s.GetShardForKey(fmt.Sprintf("key-%d", i)); got != 2 {
			t.Fatalf("Const(2) returned %d", got)
		}
	}
}

func TestSeeded_deterministic(t *testing.T) {
	s := Seeded(5, "prod")
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		want := s.GetShardForKey(key)
		if got := s.GetShardForKey(key); got != want {
			t.Fatalf("Seeded not deterministic for %q: %d != %d", key, got, want)
		}
		if want < 0 || want >= 5 {
			t.Fatalf("Seeded(%q) = %d out of range", key, want)
		}
	}
}

func TestSeeded_seedChangesDistribution(t *testing.T) {
	a := Seeded(16, "seed-a")
	b := Seeded(16, "seed-b")
	same := 0
	for i := 0; i < 256; i++ {
		key := fmt.Sprintf("key-%d", i)
		if a.GetShardForKey(key) == b.GetShardForKey(key) {
			same++
		}
	}
	if same == 256 {
		t.Fatal("distinct seeds produced identical shard assignment")
	}
}
