// Package cache provides the in-process LRU/TTL cache and the manager that
// routes between it and the remote Redis backend.
package cache

import (
	"container/list"
	"fmt"
	"path"
	"sync"
	"time"

	cacheerrors "curator-cache/internal/common/errors"
)

// LocalCache is a thread-safe, in-process key-value store with per-entry TTL
// and LRU eviction. It combines a map for O(1) lookup with a doubly linked
// list that tracks recency: the front of the list is the most recently used
// entry, the back is the eviction candidate.
//
// Expiry is lazy. An expired entry is purged when an operation touches it;
// additionally every Set sweeps all currently expired entries before
// inserting, which is O(n) in the number of stored entries. There is no
// background janitor.
//
// All public operations are guarded by a single mutex.
type LocalCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	lru        *list.List
	maxSize    int
	defaultTTL time.Duration
	stats      Stats

	// now is replaceable in tests to simulate clock advancement
	now func() time.Time
}

// NewLocalCache creates a LocalCache holding at most maxSize live entries.
// Entries stored without an explicit TTL expire after defaultTTL.
func NewLocalCache(maxSize int, defaultTTL time.Duration) (*LocalCache, error) {
	if maxSize < 1 {
		return nil, cacheerrors.NewInvalidArgument(fmt.Sprintf("max size must be positive, got %d", maxSize))
	}
	if defaultTTL <= 0 {
		return nil, cacheerrors.NewInvalidArgument(fmt.Sprintf("default TTL must be positive, got %v", defaultTTL))
	}
	return &LocalCache{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Set stores value under key with the given TTL. A zero TTL selects the
// cache's default. Before inserting, all currently expired entries are swept;
// if the cache is still full and key is new, the least recently used entry is
// evicted. A negative TTL is a programming error and panics.
func (c *LocalCache) Set(key string, value interface{}, ttl time.Duration) bool {
	if ttl < 0 {
		panic(fmt.Sprintf("cache: negative TTL %v for key %q", ttl, key))
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepExpiredLocked(now)

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = now.Add(ttl)
		c.lru.MoveToFront(elem)
		c.stats.Sets++
		return true
	}

	if c.lru.Len() >= c.maxSize {
		c.evictOldestLocked()
	}

	elem := c.lru.PushFront(&entry{
		key:       key,
		value:     value,
		expiresAt: now.Add(ttl),
	})
	c.items[key] = elem
	c.stats.Sets++
	return true
}

// Get returns the value stored under key. An entry found expired is removed,
// counted as both a miss and an eviction. A hit moves the entry to the most
// recently used position.
func (c *LocalCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if ent.expired(c.now()) {
		c.removeLocked(elem)
		c.stats.Misses++
		c.stats.Evictions++
		return nil, false
	}

	c.lru.MoveToFront(elem)
	c.stats.Hits++
	return ent.value, true
}

// Delete removes key if present and reports whether a removal occurred.
func (c *LocalCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeLocked(elem)
	c.stats.Deletes++
	return true
}

// Exists reports whether key holds a live entry. Unlike Get it does not
// change recency ordering, but it does purge an entry discovered expired.
func (c *LocalCache) Exists(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	if elem.Value.(*entry).expired(c.now()) {
		c.removeLocked(elem)
		c.stats.Evictions++
		return false
	}
	return true
}

// Clear drops every entry. Cleared entries are not counted as evictions or
// deletes.
func (c *LocalCache) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	return true
}

// Keys returns the keys of all currently live entries, purging any entries
// discovered expired along the way.
func (c *LocalCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpiredLocked(c.now())

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	return keys
}

// DeletePattern removes every live key matching the glob-style pattern and
// returns the number of keys removed.
func (c *LocalCache) DeletePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpiredLocked(c.now())

	removed := 0
	for key, elem := range c.items {
		if matched, err := path.Match(pattern, key); err == nil && matched {
			c.removeLocked(elem)
			c.stats.Deletes++
			removed++
		}
	}
	return removed
}

// Size returns the number of stored entries, including any not yet purged
// expired entries.
func (c *LocalCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache's counters.
func (c *LocalCache) Stats() StatsRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	return StatsRecord{
		Backend:   "local",
		Size:      len(c.items),
		MaxSize:   c.maxSize,
		Hits:      c.stats.Hits,
		Misses:    c.stats.Misses,
		HitRate:   HitRate(c.stats.Hits, c.stats.Misses),
		Evictions: c.stats.Evictions,
		Sets:      c.stats.Sets,
		Deletes:   c.stats.Deletes,
	}
}

// ResetStats zeroes all counters. Intended for explicit operator action only.
func (c *LocalCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
}

// sweepExpiredLocked removes every entry whose TTL has elapsed. Callers must
// hold c.mu. O(n) in the number of stored entries.
func (c *LocalCache) sweepExpiredLocked(now time.Time) {
	for _, elem := range c.items {
		if elem.Value.(*entry).expired(now) {
			c.removeLocked(elem)
			c.stats.Evictions++
		}
	}
}

// evictOldestLocked removes the least recently used entry. Callers must hold c.mu.
func (c *LocalCache) evictOldestLocked() {
	oldest := c.lru.Back()
	if oldest == nil {
		return
	}
	c.removeLocked(oldest)
	c.stats.Evictions++
}

func (c *LocalCache) removeLocked(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
