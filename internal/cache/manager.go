package cache

import (
	"context"
	"time"

	"curator-cache/internal/common/logging"
	"curator-cache/internal/redis"
)

// ManagerConfig holds the settings the Manager reads once at construction.
type ManagerConfig struct {
	Redis        *redis.Config // nil means no remote backend was configured
	LocalMaxSize int           // capacity of the fallback cache
	DefaultTTL   time.Duration // TTL applied when callers pass zero
}

// Manager presents one cache API regardless of backend. At construction it
// probes the Redis backend; if the probe fails it routes every operation to
// an internally owned LocalCache and records that it is running degraded.
// Backend failures never propagate to callers: worst case is a reduced hit
// rate.
type Manager struct {
	remote   *redis.Client
	local    *LocalCache
	degraded bool
}

// NewManager builds a manager. A missing or unreachable Redis backend is not
// an error; the manager silently falls back to the in-process cache.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.LocalMaxSize == 0 {
		cfg.LocalMaxSize = 1000
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	m := &Manager{}

	if cfg.Redis != nil {
		if cfg.Redis.DefaultTTL == 0 {
			cfg.Redis.DefaultTTL = cfg.DefaultTTL
		}
		client, err := redis.NewClient(cfg.Redis)
		if err == nil && client.Enabled() {
			m.remote = client
			return m, nil
		}
		if client != nil {
			_ = client.Close()
		}
	}

	local, err := NewLocalCache(cfg.LocalMaxSize, cfg.DefaultTTL)
	if err != nil {
		return nil, err
	}
	m.local = local
	m.degraded = true
	logging.Warn("cache manager running in degraded mode, using in-process cache",
		logging.Int("max_size", cfg.LocalMaxSize),
	)
	return m, nil
}

// Degraded reports whether the manager fell back to the in-process cache.
func (m *Manager) Degraded() bool {
	return m.degraded
}

// Get returns the cached value for key, or absent.
func (m *Manager) Get(ctx context.Context, key string) (interface{}, bool) {
	if m.remote != nil {
		return m.remote.Get(ctx, key)
	}
	return m.local.Get(key)
}

// Set stores value under key. A zero TTL selects the configured default.
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if m.remote != nil {
		return m.remote.Set(ctx, key, value, ttl)
	}
	return m.local.Set(key, value, ttl)
}

// Delete removes key, reporting whether a removal occurred.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	if m.remote != nil {
		return m.remote.Delete(ctx, key)
	}
	return m.local.Delete(key)
}

// Exists reports whether key holds a live entry.
func (m *Manager) Exists(ctx context.Context, key string) bool {
	if m.remote != nil {
		return m.remote.Exists(ctx, key)
	}
	return m.local.Exists(key)
}

// Clear drops every entry in the manager's namespace.
func (m *Manager) Clear(ctx context.Context) bool {
	if m.remote != nil {
		return m.remote.ClearNamespace(ctx, "")
	}
	return m.local.Clear()
}

// ClearNamespace drops every entry under the given namespace. The in-process
// fallback has no namespaces, so it clears everything.
func (m *Manager) ClearNamespace(ctx context.Context, namespace string) bool {
	if m.remote != nil {
		return m.remote.ClearNamespace(ctx, namespace)
	}
	return m.local.Clear()
}

// DeletePattern removes every key matching the glob-style pattern and
// returns the number of keys removed. Listing is an O(keyspace) scan on the
// backend.
func (m *Manager) DeletePattern(ctx context.Context, pattern string) int {
	if m.remote != nil {
		return m.remote.DeletePattern(ctx, pattern)
	}
	return m.local.DeletePattern(pattern)
}

// GetOrSet returns the cached value for key if present; otherwise it calls
// compute, stores the result, and returns it. A compute error is returned to
// the caller and nothing is stored.
//
// This is not atomic across concurrent callers: N concurrent misses for the
// same key may invoke compute up to N times. There is deliberately no
// single-flight coalescing, since callers may depend on compute's observable
// timing and side effects.
func (m *Manager) GetOrSet(ctx context.Context, key string, compute func() (interface{}, error), ttl time.Duration) (interface{}, error) {
	if value, ok := m.Get(ctx, key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	m.Set(ctx, key, value, ttl)
	return value, nil
}

// Stats returns a snapshot of the active backend's counters, labeled with
// the backend in use and the degraded flag.
func (m *Manager) Stats() StatsRecord {
	if m.remote != nil {
		s := m.remote.Stats()
		return StatsRecord{
			Backend: "redis",
			Hits:    s.Hits,
			Misses:  s.Misses,
			HitRate: HitRate(s.Hits, s.Misses),
			Sets:    s.Sets,
			Deletes: s.Deletes,
		}
	}

	record := m.local.Stats()
	record.Degraded = true
	return record
}

// ResetStats zeroes the active backend's counters.
func (m *Manager) ResetStats() {
	if m.remote != nil {
		m.remote.ResetStats()
		return
	}
	m.local.ResetStats()
}

// Close releases backend resources.
func (m *Manager) Close() error {
	if m.remote != nil {
		return m.remote.Close()
	}
	return nil
}
