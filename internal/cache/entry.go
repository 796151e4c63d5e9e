package cache

import "time"

// entry is a single cached value together with its absolute expiry instant.
// Entries are owned exclusively by the cache that created them.
type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// expired reports whether the entry's TTL has elapsed at the given instant.
func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}
