package cache

import "math"

// Stats holds the monotonically increasing counters for one cache instance.
// Counters reset only via ResetStats, never automatically.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
}

// StatsRecord is the snapshot returned by Stats() calls. Size and MaxSize
// describe the in-process cache; they are zero when the remote backend is
// active, since the backend owns its own keyspace accounting.
type StatsRecord struct {
	Backend   string  `json:"backend"`
	Degraded  bool    `json:"degraded"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions int64   `json:"evictions"`
	Sets      int64   `json:"sets"`
	Deletes   int64   `json:"deletes"`
}

// HitRate computes hits/(hits+misses) as a percentage rounded to two
// decimals, or 0.0 when no requests have been observed.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	rate := float64(hits) / float64(total) * 100
	return math.Round(rate*100) / 100
}
