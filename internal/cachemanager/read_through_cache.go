package cachemanager

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/legend/internal/log"
)

// ReadThroughCache loads a value on a miss and stores it under a key derived
// from the load input. Inputs are expected to move forward (a generation
// counter, a revision): when the derived key changes, the entry under the
// previous key is evicted.
//
// A nil cache disables caching; every Get calls load.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) K
	load  func(ctx context.Context, input I) (V, error)
	ttl   time.Duration

	mu    sync.Mutex
	last  K
	stats Stats
}

// Stats counts cache lookups.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Evicted uint64
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	key func(I) K,
	load func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, key: key, load: load, ttl: ttl}
}

// Get returns the cached value for input, loading it on a miss. Load errors
// are returned and not cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I) (V, error) {
	if r.cache == nil {
		return r.load(ctx, input)
	}

	k := r.key(input)
	if value, ok := r.cache.Get(ctx, k); ok {
		r.mu.Lock()
		r.stats.Hits++
		r.mu.Unlock()
		return value, nil
	}

	value, err := r.load(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, k, value, r.ttl)

	r.mu.Lock()
	r.stats.Misses++
	prev := r.last
	r.last = k
	if prev != "" && prev != k {
		r.stats.Evicted++
	}
	r.mu.Unlock()

	if prev != "" && prev != k {
		if err := r.cache.Delete(ctx, prev); err != nil {
			log.Warn(log.CatCache, "Evicting stale entry failed", "key", string(prev), "error", err)
		}
	}
	return value, nil
}

// Stats returns a snapshot of the lookup counters.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
