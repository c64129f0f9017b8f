package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

// POICatalog is the POI index operations the API exposes.
type POICatalog interface {
	AddAll(pois []*model.POI) error
	FindNearby(ctx context.Context, loc geo.Point, radiusMiles float64, categories []string) ([]*model.POI, error)
	Count() int
}

// POIHandler handles POI catalog endpoints.
type POIHandler struct {
	catalog POICatalog
}

// NewPOIHandler creates a new POIHandler.
func NewPOIHandler(catalog POICatalog) *POIHandler {
	return &POIHandler{catalog: catalog}
}

// HandleNearby handles GET /api/pois/nearby?lat=..&lon=..&radius=..&category=..
func (h *POIHandler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}

	radius := 25.0
	if raw := q.Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
		radius = v
	}

	var categories []string
	if cat := q.Get("category"); cat != "" {
		categories = []string{cat}
	}

	pois, err := h.catalog.FindNearby(r.Context(), geo.Point{Lat: lat, Lon: lon}, radius, categories)
	if err != nil {
		slog.Error("API: POI search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if pois == nil {
		pois = []*model.POI{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pois); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// HandleAdd handles POST /api/pois
func (h *POIHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var pois []*model.POI
	if err := json.NewDecoder(r.Body).Decode(&pois); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(pois) == 0 {
		http.Error(w, "no POIs provided", http.StatusBadRequest)
		return
	}

	if err := h.catalog.AddAll(pois); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("API: POIs loaded", "added", len(pois), "total", h.catalog.Count())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]int{
		"added": len(pois),
		"total": h.catalog.Count(),
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
