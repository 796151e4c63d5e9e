package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curator-cache/internal/redis"
)

func setupRemoteManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	m, err := NewManager(ManagerConfig{
		Redis:      &redis.Config{Address: mr.Addr(), Namespace: "test"},
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	require.False(t, m.Degraded())
	t.Cleanup(func() { _ = m.Close() })

	return m, mr
}

func setupFallbackManager(t *testing.T) *Manager {
	m, err := NewManager(ManagerConfig{
		Redis:        &redis.Config{Address: "invalid:99999"},
		LocalMaxSize: 100,
		DefaultTTL:   time.Minute,
	})
	require.NoError(t, err)
	require.True(t, m.Degraded())
	return m
}

func TestManager_RemoteBackend(t *testing.T) {
	m, _ := setupRemoteManager(t)
	ctx := context.Background()

	assert.True(t, m.Set(ctx, "article:1", "cached", 0))

	value, ok := m.Get(ctx, "article:1")
	require.True(t, ok)
	assert.Equal(t, "cached", value)

	assert.True(t, m.Exists(ctx, "article:1"))
	assert.True(t, m.Delete(ctx, "article:1"))
	assert.False(t, m.Exists(ctx, "article:1"))

	stats := m.Stats()
	assert.Equal(t, "redis", stats.Backend)
	assert.False(t, stats.Degraded)
}

func TestManager_FallbackOnUnreachableBackend(t *testing.T) {
	m := setupFallbackManager(t)
	ctx := context.Background()

	assert.True(t, m.Set(ctx, "article:1", "cached locally", 0))

	value, ok := m.Get(ctx, "article:1")
	require.True(t, ok)
	assert.Equal(t, "cached locally", value)

	stats := m.Stats()
	assert.Equal(t, "local", stats.Backend)
	assert.True(t, stats.Degraded)
}

func TestManager_FallbackWithoutRedisConfig(t *testing.T) {
	m, err := NewManager(ManagerConfig{LocalMaxSize: 10, DefaultTTL: time.Minute})
	require.NoError(t, err)
	assert.True(t, m.Degraded())
}

func TestManager_FallbackIsLRUCache(t *testing.T) {
	m, err := NewManager(ManagerConfig{
		LocalMaxSize: 2,
		DefaultTTL:   time.Minute,
	})
	require.NoError(t, err)
	ctx := context.Background()

	m.Set(ctx, "a", 1, 0)
	m.Set(ctx, "b", 2, 0)
	m.Get(ctx, "a")
	m.Set(ctx, "c", 3, 0)

	_, ok := m.Get(ctx, "b")
	assert.False(t, ok, "b was the LRU entry and must have been evicted")

	_, ok = m.Get(ctx, "a")
	assert.True(t, ok)
}

func TestManager_GetOrSet(t *testing.T) {
	m, _ := setupRemoteManager(t)
	ctx := context.Background()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	value, err := m.GetOrSet(ctx, "expensive", compute, 0)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)

	value, err = m.GetOrSet(ctx, "expensive", compute, 0)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestManager_GetOrSetComputeError(t *testing.T) {
	m, _ := setupRemoteManager(t)
	ctx := context.Background()

	boom := errors.New("upstream failed")
	value, err := m.GetOrSet(ctx, "failing", func() (interface{}, error) {
		return nil, boom
	}, 0)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, value)
	assert.False(t, m.Exists(ctx, "failing"), "failed computations must not be cached")
}

func TestManager_ClearNamespace(t *testing.T) {
	m, mr := setupRemoteManager(t)
	ctx := context.Background()

	m.Set(ctx, "a", 1, 0)
	m.Set(ctx, "b", 2, 0)
	mr.Set("other:c", "untouched")

	assert.True(t, m.ClearNamespace(ctx, "test"))
	assert.False(t, m.Exists(ctx, "a"))
	assert.False(t, m.Exists(ctx, "b"))
	assert.True(t, mr.Exists("other:c"))
}

func TestManager_Clear(t *testing.T) {
	m, _ := setupRemoteManager(t)
	ctx := context.Background()

	m.Set(ctx, "a", 1, 0)
	assert.True(t, m.Clear(ctx))
	assert.False(t, m.Exists(ctx, "a"))
}

func TestManager_DeletePattern(t *testing.T) {
	t.Run("remote", func(t *testing.T) {
		m, _ := setupRemoteManager(t)
		ctx := context.Background()

		m.Set(ctx, "articles:1", "a", 0)
		m.Set(ctx, "users:1", "b", 0)

		assert.Equal(t, 1, m.DeletePattern(ctx, "articles:*"))
		assert.True(t, m.Exists(ctx, "users:1"))
	})

	t.Run("fallback", func(t *testing.T) {
		m := setupFallbackManager(t)
		ctx := context.Background()

		m.Set(ctx, "articles:1", "a", 0)
		m.Set(ctx, "users:1", "b", 0)

		assert.Equal(t, 1, m.DeletePattern(ctx, "articles:*"))
		assert.True(t, m.Exists(ctx, "users:1"))
	})
}

func TestManager_OutageDegradesReadsToMisses(t *testing.T) {
	m, mr := setupRemoteManager(t)
	ctx := context.Background()

	m.Set(ctx, "key", "value", 0)
	mr.Close()

	// Reads degrade to misses, writes to no-ops; nothing surfaces an error.
	value, ok := m.Get(ctx, "key")
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.False(t, m.Set(ctx, "key", "value", 0))
}

func TestManager_ResetStats(t *testing.T) {
	m := setupFallbackManager(t)
	ctx := context.Background()

	m.Set(ctx, "a", 1, 0)
	m.Get(ctx, "a")

	m.ResetStats()

	stats := m.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Sets)
}
