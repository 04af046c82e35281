package cachemanager

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func genKey(gen uint64) string { return "layers:" + strconv.FormatUint(gen, 10) }

func TestReadThroughCache_LoadsOncePerKey(t *testing.T) {
	ctx := context.Background()
	calls := 0
	cache := NewInMemoryCacheManager[string, []int]("layers", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache[string, []int, uint64](cache, genKey, func(ctx context.Context, gen uint64) ([]int, error) {
		calls++
		return []int{int(gen)}, nil
	}, 0)

	for range 2 {
		v, err := rt.Get(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, []int{7}, v)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, Stats{Hits: 1, Misses: 1}, rt.Stats())
}

func TestReadThroughCache_EvictsPreviousKey(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, []int]("layers", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache[string, []int, uint64](cache, genKey, func(ctx context.Context, gen uint64) ([]int, error) {
		return []int{int(gen)}, nil
	}, 0)

	_, err := rt.Get(ctx, 1)
	require.NoError(t, err)
	_, err = rt.Get(ctx, 2)
	require.NoError(t, err)

	require.Equal(t, 1, cache.Len())
	_, ok := cache.Get(ctx, genKey(1))
	require.False(t, ok)
	require.Equal(t, uint64(1), rt.Stats().Evicted)
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("layers", DefaultExpiration, DefaultCleanupInterval)
	boom := errors.New("boom")
	rt := NewReadThroughCache[string, int, uint64](cache, genKey, func(ctx context.Context, _ uint64) (int, error) {
		return 0, boom
	}, 0)

	_, err := rt.Get(ctx, 3)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, cache.Len())
	require.Zero(t, rt.Stats().Misses)
}

func TestReadThroughCache_NilCacheAlwaysLoads(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache[string, int, int](nil, func(int) string { return "k" }, func(ctx context.Context, in int) (int, error) {
		calls++
		return in * 2, nil
	}, 0)

	for range 3 {
		v, err := rt.Get(context.Background(), 21)
		require.NoError(t, err)
		require.Equal(t, 42, v)
	}
	require.Equal(t, 3, calls)
	require.Equal(t, Stats{}, rt.Stats())
}
