package fft

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

// ─────────────────────────────────────────────────────────────────────────────
// Twiddle Cache
// ─────────────────────────────────────────────────────────────────────────────

// maxCachedLog2 bounds the sizes whose rotation tables are retained. Larger
// tables are rebuilt per call to keep the resident footprint small.
const maxCachedLog2 = 20

type twiddleTable struct {
	re, im []float64
}

// twiddleCache keeps one immutable rotation table per (size, direction).
// Tables are read-only once published, so callers share them freely.
type twiddleCache struct {
	mu     sync.RWMutex
	tables map[int]twiddleTable
	hits   atomic.Uint64
	misses atomic.Uint64
}

var globalTwiddles = &twiddleCache{tables: make(map[int]twiddleTable)}

// CacheStats reports the usage of the rotation table cache.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// TwiddleCacheStats returns a snapshot of the rotation table cache counters.
func TwiddleCacheStats() CacheStats {
	globalTwiddles.mu.RLock()
	entries := len(globalTwiddles.tables)
	globalTwiddles.mu.RUnlock()
	return CacheStats{
		Hits:    globalTwiddles.hits.Load(),
		Misses:  globalTwiddles.misses.Load(),
		Entries: entries,
	}
}

// twiddles returns the rotation table for size n, from the cache when n is
// small enough to be retained.
func twiddles(n int, inverse bool) ([]float64, []float64) {
	lb := bits.TrailingZeros(uint(n))
	if lb > maxCachedLog2 {
		return computeTwiddles(n, inverse)
	}
	key := lb << 1
	if inverse {
		key |= 1
	}

	c := globalTwiddles
	c.mu.RLock()
	t, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return t.re, t.im
	}

	c.misses.Add(1)
	re, im := computeTwiddles(n, inverse)
	c.mu.Lock()
	if existing, ok := c.tables[key]; ok {
		c.mu.Unlock()
		return existing.re, existing.im
	}
	c.tables[key] = twiddleTable{re: re, im: im}
	c.mu.Unlock()
	return re, im
}
