package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"roadtripgo/pkg/model"
)

// HistoryProvider reads recorded tour runs. history.Store satisfies this.
type HistoryProvider interface {
	ListTours(ctx context.Context, limit int) ([]*model.HistoryEntry, error)
	Statistics(ctx context.Context) (*model.HistoryStatistics, error)
}

// HistoryHandler handles tour history endpoints.
type HistoryHandler struct {
	store HistoryProvider
}

// NewHistoryHandler creates a new HistoryHandler. Returns nil if the store is
// missing.
func NewHistoryHandler(store HistoryProvider) *HistoryHandler {
	if store == nil {
		return nil
	}
	return &HistoryHandler{store: store}
}

// HandleList handles GET /api/history
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.store.ListTours(r.Context(), limit)
	if err != nil {
		slog.Error("API: History list failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// HandleStats handles GET /api/history/stats
func (h *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		slog.Error("API: History stats failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
