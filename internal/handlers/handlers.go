// Package handlers exposes the operational HTTP surface of the cache
// service: health, stats, and bulk invalidation. Application traffic goes
// through the cache API directly, not through HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"curator-cache/internal/cache"
)

// Handlers holds the dependencies of the operational endpoints.
type Handlers struct {
	cache   *cache.Manager
	started time.Time
}

// New creates the handler set around the given cache manager.
func New(manager *cache.Manager) *Handlers {
	return &Handlers{
		cache:   manager,
		started: time.Now(),
	}
}

// HealthCheck reports liveness, the active backend, and uptime.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	backend := "redis"
	if h.cache.Degraded() {
		backend = "local"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"backend":        backend,
		"degraded":       h.cache.Degraded(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// GetCacheStats returns the active backend's counters.
func (h *Handlers) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Stats())
}

// ResetCacheStats zeroes the counters. Explicit operator action only.
func (h *Handlers) ResetCacheStats(w http.ResponseWriter, r *http.Request) {
	h.cache.ResetStats()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ClearNamespace deletes every key under the namespace in the URL.
func (h *Handlers) ClearNamespace(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	if namespace == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "namespace is required"})
		return
	}

	h.cache.ClearNamespace(r.Context(), namespace)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "namespace": namespace})
}

// DeleteKeys deletes every key matching the glob-style pattern in the
// "pattern" query parameter.
func (h *Handlers) DeleteKeys(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pattern is required"})
		return
	}

	removed := h.cache.DeletePattern(r.Context(), pattern)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"pattern": pattern,
		"removed": removed,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
