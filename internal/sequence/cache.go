package sequence

import (
	"context"
	"math/big"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheEntries is the number of base sequences a BaseCache keeps.
const DefaultCacheEntries = 8

// BaseCache is a thread-safe LRU cache of base sequences keyed by length.
//
// base(n) does not depend on the sequence length, so a cached sequence also
// serves any shorter request through its prefix. Returned slices are shared
// between callers and must not be modified.
type BaseCache struct {
	entries *lru.Cache[uint64, []*big.Int]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// CacheStats is a snapshot of the cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// NewBaseCache creates a cache holding at most size sequences.
// A size below 1 uses DefaultCacheEntries.
func NewBaseCache(size int) (*BaseCache, error) {
	if size < 1 {
		size = DefaultCacheEntries
	}
	entries, err := lru.New[uint64, []*big.Int](size)
	if err != nil {
		return nil, err
	}
	return &BaseCache{entries: entries}, nil
}

// BaseSequence returns base(1)..base(nMax), from the cache when a sequence
// of at least nMax terms is present, or built with the package-level
// BaseSequence and stored otherwise.
func (c *BaseCache) BaseSequence(ctx context.Context, nMax uint64, reporter ProgressReporter) ([]*big.Int, error) {
	if terms, ok := c.lookup(nMax); ok {
		c.hits.Add(1)
		if reporter != nil {
			reporter(1.0)
		}
		return terms, nil
	}
	c.misses.Add(1)

	terms, err := BaseSequence(ctx, nMax, reporter)
	if err != nil {
		return nil, err
	}
	c.entries.Add(nMax, terms)
	return terms, nil
}

func (c *BaseCache) lookup(nMax uint64) ([]*big.Int, bool) {
	if terms, ok := c.entries.Get(nMax); ok {
		return terms, true
	}
	for _, n := range c.entries.Keys() {
		if n < nMax {
			continue
		}
		// Get refreshes the recency of the longer entry.
		if terms, ok := c.entries.Get(n); ok {
			return terms[:nMax:nMax], true
		}
	}
	return nil, false
}

// Stats returns the hit and miss counters and the number of entries.
func (c *BaseCache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.entries.Len(),
	}
}

// Purge drops every cached sequence.
func (c *BaseCache) Purge() {
	c.entries.Purge()
}
