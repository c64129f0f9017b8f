package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"roadtripgo/pkg/tracker"
)

// StatsHandler serves request counters for upstream providers.
type StatsHandler struct {
	tracker *tracker.Tracker
}

// NewStatsHandler creates a new StatsHandler. Returns nil if no tracker is
// wired.
func NewStatsHandler(tr *tracker.Tracker) *StatsHandler {
	if tr == nil {
		return nil
	}
	return &StatsHandler{tracker: tr}
}

// ServeHTTP handles GET /api/stats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.tracker.Snapshot()); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
