// api/cache/cache_test.go
package cache_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurukul-labs/gurukul/api/cache"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
)

func TestMain(m *testing.M) {
	logger.InitLogger(os.TempDir(), "error")
	defer logger.Sync()
	os.Exit(m.Run())
}

func newTestCache(t *testing.T, cfg cache.Config) *cache.Cache {
	t.Helper()
	c := cache.New("test", cfg)
	t.Cleanup(c.Close)
	return c
}

func entryKeys(c *cache.Cache) []string {
	infos := c.Entries()
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	return keys
}

func TestCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})

		calls := 0
		producer := func(context.Context) (any, error) {
			calls++
			return "value-1", nil
		}

		v, err := c.Get(ctx, "k1", producer)
		require.NoError(t, err)
		assert.Equal(t, "value-1", v)
		assert.Equal(t, 1, calls)

		v, err = c.Get(ctx, "k1", producer)
		require.NoError(t, err)
		assert.Equal(t, "value-1", v)
		assert.Equal(t, 1, calls, "second get must be served from cache")

		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.HitCount)
		assert.Equal(t, uint64(1), stats.MissCount)
		assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	})

	t.Run("ExpiredEntryReproduces", func(t *testing.T) {
		c := newTestCache(t, cache.Config{TTL: 30 * time.Millisecond, MaxEntries: 10, SweepInterval: time.Minute})

		calls := 0
		producer := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		_, err := c.Get(ctx, "k1", producer)
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		v, err := c.Get(ctx, "k1", producer)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		assert.Equal(t, 2, calls, "expired entry must re-invoke the producer")
	})

	t.Run("ProducerErrorNotCached", func(t *testing.T) {
		c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})

		boom := errors.New("database down")
		calls := 0

		_, err := c.Get(ctx, "k1", func(context.Context) (any, error) {
			calls++
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Stats().Size, "a failed producer must not populate the cache")

		v, err := c.Get(ctx, "k1", func(context.Context) (any, error) {
			calls++
			return "recovered", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "recovered", v)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, c.Stats().Size)
	})
}

func TestCacheEviction(t *testing.T) {
	c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 3, SweepInterval: time.Minute})

	for i := 1; i <= 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		time.Sleep(2 * time.Millisecond) // distinct createdAt per entry
	}
	c.Set("k4", 4)

	stats := c.Stats()
	assert.Equal(t, 3, stats.Size, "size must stay within the configured maximum")
	assert.Equal(t, []string{"k2", "k3", "k4"}, entryKeys(c), "the oldest entry goes first")
}

func TestCacheInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})

	c.Set("videos:search|a", 1)
	c.Set("videos:get|b", 2)
	c.Set("courses:search|c", 3)

	removed, err := c.InvalidatePattern("^videos:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"courses:search|c"}, entryKeys(c))

	// The surviving key still hits.
	calls := 0
	v, err := c.Get(ctx, "courses:search|c", func(context.Context) (any, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 0, calls)

	// Matching nothing is success.
	removed, err = c.InvalidatePattern("^enrollments:")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	// A broken pattern is an error and removes nothing.
	_, err = c.InvalidatePattern("(")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})

	c.Set("k1", 1)
	_, err := c.Get(ctx, "k1", func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, uint64(0), stats.HitCount)
	assert.Equal(t, uint64(0), stats.MissCount)
	assert.Zero(t, stats.HitRate)
	assert.Zero(t, stats.EstimatedMemory)
}

func TestCacheEntries(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})

	c.Set("b", "two")
	c.Set("a", "one")
	for i := 0; i < 2; i++ {
		_, err := c.Get(ctx, "a", func(context.Context) (any, error) { return nil, nil })
		require.NoError(t, err)
	}

	infos := c.Entries()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Key)
	assert.Equal(t, uint64(2), infos[0].AccessCount)
	assert.Equal(t, "b", infos[1].Key)
	assert.Equal(t, uint64(0), infos[1].AccessCount)
}

func TestCacheSweeper(t *testing.T) {
	c := newTestCache(t, cache.Config{TTL: 20 * time.Millisecond, MaxEntries: 10, SweepInterval: 25 * time.Millisecond})

	c.Set("k1", 1)
	c.Set("k2", 2)

	time.Sleep(90 * time.Millisecond)

	// No read touched the keys; the sweeper alone must have removed them.
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCacheClose(t *testing.T) {
	c := cache.New("test", cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute})
	c.Set("k1", 1)

	c.Close()
	c.Close() // idempotent

	assert.Equal(t, 0, c.Stats().Size)
}

func TestCachesInvalidateResource(t *testing.T) {
	cs := cache.NewCaches(
		cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute},
		cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute},
		cache.Config{TTL: time.Minute, MaxEntries: 10, SweepInterval: time.Minute},
	)
	t.Cleanup(cs.Close)

	cs.Query.Set("videos:search|x", 1)
	cs.Stats.Set("videos:stats|y", 2)
	cs.Public.Set("videos:mobile|z", 3)
	cs.Query.Set("courses:search|x", 4)

	removed := cs.InvalidateResource(scope.ResourceVideos)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []string{"courses:search|x"}, entryKeys(cs.Query))
	assert.Empty(t, entryKeys(cs.Stats))
	assert.Empty(t, entryKeys(cs.Public))

	// Idempotent: nothing left to remove is still success.
	assert.Equal(t, 0, cs.InvalidateResource(scope.ResourceVideos))
}

func TestCachesByName(t *testing.T) {
	cs := cache.NewCaches(cache.Config{}, cache.Config{}, cache.Config{})
	t.Cleanup(cs.Close)

	c, ok := cs.ByName(cache.TierStats)
	require.True(t, ok)
	assert.Equal(t, cache.TierStats, c.Name())

	_, ok = cs.ByName("nope")
	assert.False(t, ok)
}
