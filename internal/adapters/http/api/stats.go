package api

import (
	"net/http"
)

// StatsProvider reports the dashboard service state for /stats.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the service stats as JSON.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler wraps p. A nil provider answers 503.
func NewStatsHandler(p StatsProvider) *StatsHandler {
	return &StatsHandler{provider: p}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "no_stats", ErrNoStats)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
