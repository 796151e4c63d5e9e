// Package redis provides the remote cache client backed by a Redis server.
// All keys are namespaced as "{namespace}:{key}" and every backend failure is
// converted to a neutral result rather than an error: a read degrades to a
// miss, a write to a no-op. Cache unavailability must never fail a request.
package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	cacheerrors "curator-cache/internal/common/errors"
	"curator-cache/internal/common/logging"
)

// DefaultNamespace partitions keys of callers that never choose their own.
const DefaultNamespace = "default"

const opTimeout = 5 * time.Second

// Config holds the connection settings for the remote cache backend.
// Values are read once at construction and never mutated afterwards.
type Config struct {
	Address    string        `json:"address"`
	Password   string        `json:"password"`
	DB         int           `json:"db"`
	PoolSize   int           `json:"pool_size"`
	Namespace  string        `json:"namespace"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// clientStats is shared between namespace-scoped views of one client.
type clientStats struct {
	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

// Client talks to the Redis backend. A client that fails its construction
// liveness probe marks itself disabled and short-circuits every operation to
// a neutral result without attempting network I/O.
type Client struct {
	rdb       *redis.Client
	config    *Config
	namespace string
	disabled  bool
	stats     *clientStats
}

// NewClient builds a client and probes the backend once. A failed probe does
// not return an error: the client comes back disabled so that callers keep a
// uniform API while the manager decides whether to fall back.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, cacheerrors.NewInvalidArgument("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	if config.Namespace == "" {
		config.Namespace = DefaultNamespace
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 5 * time.Minute
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	client := &Client{
		rdb:       rdb,
		config:    config,
		namespace: config.Namespace,
		stats:     &clientStats{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		client.disabled = true
		logging.Warn("redis backend unavailable, client disabled",
			logging.String("address", config.Address),
			logging.Err(err),
		)
	}

	return client, nil
}

// Enabled reports whether the construction probe succeeded.
func (c *Client) Enabled() bool {
	return !c.disabled
}

// WithNamespace returns a view of the client bound to another namespace.
// The connection pool and stats counters are shared with the parent.
func (c *Client) WithNamespace(namespace string) *Client {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	view := *c
	view.namespace = namespace
	return &view
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health pings the backend.
func (c *Client) Health() error {
	if c.disabled {
		return cacheerrors.NewBackendUnavailable("client is disabled after failed probe", nil)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return cacheerrors.NewBackendUnavailable("ping failed", err)
	}
	return nil
}

func (c *Client) namespacedKey(key string) string {
	return c.namespace + ":" + key
}

// Set stores value under the namespaced key. A zero TTL selects the
// configured default; a negative TTL is a programming error and panics.
// Returns false on any backend failure.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if ttl < 0 {
		panic(fmt.Sprintf("redis: negative TTL %v for key %q", ttl, key))
	}
	if c.disabled {
		return false
	}
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}

	payload, serr := serialize(value)
	if serr != nil {
		logging.Warn("redis set storing degraded string rendering",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(serr),
		)
	}
	if err := c.rdb.Set(ctx, c.namespacedKey(key), payload, ttl).Err(); err != nil {
		logging.Warn("redis set failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		return false
	}
	atomic.AddInt64(&c.stats.sets, 1)
	return true
}

// Get returns the value stored under the namespaced key, or absent on a
// miss or any backend failure.
func (c *Client) Get(ctx context.Context, key string) (interface{}, bool) {
	if c.disabled {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.namespacedKey(key)).Result()
	if err == redis.Nil {
		atomic.AddInt64(&c.stats.misses, 1)
		return nil, false
	}
	if err != nil {
		logging.Warn("redis get failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		atomic.AddInt64(&c.stats.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.stats.hits, 1)
	return deserialize(raw), true
}

// Delete removes the namespaced key, reporting whether a removal occurred.
func (c *Client) Delete(ctx context.Context, key string) bool {
	if c.disabled {
		return false
	}

	removed, err := c.rdb.Del(ctx, c.namespacedKey(key)).Result()
	if err != nil {
		logging.Warn("redis delete failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		return false
	}
	if removed > 0 {
		atomic.AddInt64(&c.stats.deletes, removed)
	}
	return removed > 0
}

// Exists reports whether the namespaced key holds a value.
func (c *Client) Exists(ctx context.Context, key string) bool {
	if c.disabled {
		return false
	}

	count, err := c.rdb.Exists(ctx, c.namespacedKey(key)).Result()
	if err != nil {
		logging.Warn("redis exists failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		return false
	}
	return count > 0
}

// Expire resets the TTL of an existing key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if ttl < 0 {
		panic(fmt.Sprintf("redis: negative TTL %v for key %q", ttl, key))
	}
	if c.disabled {
		return false
	}

	ok, err := c.rdb.Expire(ctx, c.namespacedKey(key), ttl).Result()
	if err != nil {
		logging.Warn("redis expire failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		return false
	}
	return ok
}

// TTL returns the remaining seconds before the key expires, or -1 when the
// backend is unreachable, the key is absent, or the key has no expiry.
func (c *Client) TTL(ctx context.Context, key string) int64 {
	if c.disabled {
		return -1
	}

	remaining, err := c.rdb.TTL(ctx, c.namespacedKey(key)).Result()
	if err != nil {
		logging.Warn("redis ttl failed",
			logging.String("key", c.namespacedKey(key)),
			logging.Err(err),
		)
		return -1
	}
	if remaining < 0 {
		return -1
	}
	return int64(remaining.Seconds())
}

// DeletePattern removes every key matching the glob-style pattern within the
// client's namespace and returns the number of keys deleted. The scan is
// O(keyspace) on the backend, which is a known scalability caveat for large
// keyspaces.
func (c *Client) DeletePattern(ctx context.Context, pattern string) int {
	if c.disabled {
		return 0
	}
	return c.deleteMatching(ctx, c.namespacedKey(pattern))
}

// ClearNamespace removes every key under the given namespace.
func (c *Client) ClearNamespace(ctx context.Context, namespace string) bool {
	if c.disabled {
		return false
	}
	if namespace == "" {
		namespace = c.namespace
	}
	c.deleteMatching(ctx, namespace+":*")
	return true
}

// deleteMatching scans for keys matching the full (already namespaced)
// pattern and deletes them in one batch.
func (c *Client) deleteMatching(ctx context.Context, pattern string) int {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			logging.Warn("redis scan failed",
				logging.String("pattern", pattern),
				logging.Err(err),
			)
			return 0
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return 0
	}

	removed, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		logging.Warn("redis batch delete failed",
			logging.String("pattern", pattern),
			logging.Int("keys", len(keys)),
			logging.Err(err),
		)
		return 0
	}
	atomic.AddInt64(&c.stats.deletes, removed)
	return int(removed)
}

// Stats is a snapshot of a client's counters. Eviction accounting belongs to
// the backend, so there is no eviction counter here.
type Stats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&c.stats.hits),
		Misses:  atomic.LoadInt64(&c.stats.misses),
		Sets:    atomic.LoadInt64(&c.stats.sets),
		Deletes: atomic.LoadInt64(&c.stats.deletes),
	}
}

// ResetStats zeroes all counters. Intended for explicit operator action only.
func (c *Client) ResetStats() {
	atomic.StoreInt64(&c.stats.hits, 0)
	atomic.StoreInt64(&c.stats.misses, 0)
	atomic.StoreInt64(&c.stats.sets, 0)
	atomic.StoreInt64(&c.stats.deletes, 0)
}
