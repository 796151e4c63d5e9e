package memoize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a minimal in-memory Cache for exercising the memoizer without
// pulling in a backend.
type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]interface{})}
}

func (c *mapCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	return value, ok
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return true
}

func (c *mapCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestWrap_InvalidTargets(t *testing.T) {
	c := newMapCache()

	assert.Panics(t, func() { Wrap(c, "not a function") })
	assert.Panics(t, func() { Wrap(c, func() {}) })
	assert.Panics(t, func() { Wrap(c, func() (int, string) { return 0, "" }) })
}

func TestCall_CachesResult(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	score := func(articleID int, boost float64) float64 {
		calls++
		return float64(articleID) * boost
	}

	memoized := Wrap(c, score)

	first, err := memoized.Call(ctx, 7, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 10.5, first)
	assert.Equal(t, 1, calls)

	second, err := memoized.Call(ctx, 7, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 10.5, second)
	assert.Equal(t, 1, calls, "repeat call must be served from cache")

	third, err := memoized.Call(ctx, 8, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 12.0, third)
	assert.Equal(t, 2, calls, "distinct arguments must produce a fresh invocation")
}

func TestCall_EquivalentArgumentsShareOneKey(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	lookup := func(filters map[string]string) string {
		calls++
		return "result"
	}

	memoized := Wrap(c, lookup)

	// Logically equal maps built in different insertion orders must render
	// to the same canonical key.
	a := map[string]string{}
	a["topic"] = "golang"
	a["lang"] = "en"

	b := map[string]string{}
	b["lang"] = "en"
	b["topic"] = "golang"

	_, err := memoized.Call(ctx, a)
	require.NoError(t, err)
	_, err = memoized.Call(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, memoized.Key(a), memoized.Key(b))
}

func TestCall_ErrorsAreNotCached(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	boom := errors.New("fetch failed")
	fetch := func(id int) (string, error) {
		calls++
		return "", boom
	}

	memoized := Wrap(c, fetch)

	_, err := memoized.Call(ctx, 1)
	assert.ErrorIs(t, err, boom)

	_, err = memoized.Call(ctx, 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "failed calls must not populate the cache")
	assert.Equal(t, 0, c.len())
}

func TestInvalidate_TargetsExactKey(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	double := func(n int) int {
		calls++
		return n * 2
	}

	memoized := Wrap(c, double)

	_, err := memoized.Call(ctx, 1)
	require.NoError(t, err)
	_, err = memoized.Call(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	assert.True(t, memoized.Invalidate(ctx, 1))
	assert.False(t, memoized.Invalidate(ctx, 1), "already invalidated")

	// Entry for 2 is untouched; entry for 1 recomputes.
	_, err = memoized.Call(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = memoized.Call(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithCondition_RejectedResultNotStored(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	find := func(id int) interface{} {
		calls++
		if id == 404 {
			return nil
		}
		return "found"
	}

	memoized := Wrap(c, find, WithCondition(func(result interface{}) bool {
		return result != nil
	}))

	value, err := memoized.Call(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, value, "rejected result is still returned to the caller")
	assert.Equal(t, 0, c.len())

	_, err = memoized.Call(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "uncached result recomputes")

	_, err = memoized.Call(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, c.len())
}

func TestKey_QualifiedNamePrefix(t *testing.T) {
	c := newMapCache()

	memoized := Wrap(c, strings.ToUpper)

	key := memoized.Key("hello")
	assert.Contains(t, key, "strings.ToUpper")
	assert.True(t, strings.HasSuffix(key, ":hello"))
}

func TestKey_PrefixOption(t *testing.T) {
	c := newMapCache()

	memoized := Wrap(c, strings.ToUpper, WithKeyPrefix("articles"))

	key := memoized.Key("hello")
	assert.True(t, strings.HasPrefix(key, "articles:"))
}

func TestKey_LongKeysAreHashed(t *testing.T) {
	c := newMapCache()

	memoized := Wrap(c, strings.ToUpper)

	long := strings.Repeat("x", 500)
	key := memoized.Key(long)

	assert.LessOrEqual(t, len(key), maxKeyLength)
	assert.Contains(t, key, "strings.ToUpper", "function qualifier stays readable")
	assert.NotContains(t, key, long)

	// Hashing is deterministic.
	assert.Equal(t, key, memoized.Key(long))

	// Different long arguments produce different hashes.
	assert.NotEqual(t, key, memoized.Key(strings.Repeat("y", 500)))
}

func TestWithKeyFunc(t *testing.T) {
	c := newMapCache()

	memoized := Wrap(c, strings.ToUpper, WithKeyFunc(func(args []interface{}) string {
		return "custom"
	}))

	key := memoized.Key("ignored")
	assert.True(t, strings.HasSuffix(key, ":custom"))
}

func TestCall_VariadicWithNilArgument(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	calls := 0
	describe := func(name string, attrs ...interface{}) string {
		calls++
		return fmt.Sprintf("%s:%d", name, len(attrs))
	}

	memoized := Wrap(c, describe)

	// A nil in the variadic tail must map to the tail's element type.
	value, err := memoized.Call(ctx, "article", "tag", nil)
	require.NoError(t, err)
	assert.Equal(t, "article:2", value)

	_, err = memoized.Call(ctx, "article", "tag", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "repeat variadic call must be served from cache")
}

func TestCall_CanonicalSliceAndStructArguments(t *testing.T) {
	c := newMapCache()
	ctx := context.Background()

	type query struct {
		Topic string
		Limit int
	}

	calls := 0
	search := func(q query, tags []string) string {
		calls++
		return "results"
	}

	memoized := Wrap(c, search)

	_, err := memoized.Call(ctx, query{Topic: "go", Limit: 10}, []string{"a", "b"})
	require.NoError(t, err)
	_, err = memoized.Call(ctx, query{Topic: "go", Limit: 10}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Slice order is significant.
	_, err = memoized.Call(ctx, query{Topic: "go", Limit: 10}, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
