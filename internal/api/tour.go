package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"roadtripgo/pkg/model"
	"roadtripgo/pkg/narrator"
	"roadtripgo/pkg/planner"
)

// TourController defines the narration lifecycle operations the API exposes.
type TourController interface {
	PrepareTour(ctx context.Context, tour *model.Tour) ([]*model.NarrationSession, error)
	StartMonitoring(ctx context.Context) error
	StopTour(ctx context.Context) error
	Skip()
	Pause()
	Resume()
	Status() narrator.Status
}

// TourPlanner plans tours from POI selections.
type TourPlanner interface {
	CreateTour(ctx context.Context, name string, pois []*model.POI, vehicle model.Vehicle, startBattery float64, cond model.DrivingConditions) (*planner.Result, error)
}

// POIDirectory resolves POI IDs for planning requests.
type POIDirectory interface {
	Get(id string) *model.POI
}

// TourHandler handles tour planning and narration control endpoints.
type TourHandler struct {
	planner TourPlanner
	pois    POIDirectory
	ctrl    TourController
	vehicle model.Vehicle
}

// NewTourHandler creates a new TourHandler.
func NewTourHandler(p TourPlanner, dir POIDirectory, ctrl TourController, vehicle model.Vehicle) *TourHandler {
	return &TourHandler{planner: p, pois: dir, ctrl: ctrl, vehicle: vehicle}
}

// PlanRequest represents a tour planning request.
type PlanRequest struct {
	Name         string   `json:"name"`
	POIIDs       []string `json:"poi_ids"`
	StartBattery float64  `json:"start_battery"`

	Conditions model.DrivingConditions `json:"conditions"`
}

// PlanResponse is the planner outcome, including any charging stops added.
type PlanResponse struct {
	Tour          *model.Tour `json:"tour"`
	ChargersAdded int         `json:"chargers_added"`
	Warning       string      `json:"warning,omitempty"`
}

// HandlePlan handles POST /api/tour/plan
func (h *TourHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.POIIDs) == 0 {
		http.Error(w, "name and poi_ids are required", http.StatusBadRequest)
		return
	}
	if req.StartBattery <= 0 || req.StartBattery > 1 {
		req.StartBattery = 1.0
	}

	pois := make([]*model.POI, 0, len(req.POIIDs))
	for _, id := range req.POIIDs {
		poi := h.pois.Get(id)
		if poi == nil {
			http.Error(w, "unknown POI: "+id, http.StatusBadRequest)
			return
		}
		pois = append(pois, poi)
	}

	res, err := h.planner.CreateTour(r.Context(), req.Name, pois, h.vehicle, req.StartBattery, req.Conditions)
	if err != nil {
		slog.Error("API: Tour planning failed", "name", req.Name, "error", err)
		http.Error(w, "planning failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("API: Tour planned", "name", req.Name, "waypoints", len(res.Tour.Waypoints),
		"chargers_added", res.ChargersAdded, "safe", res.Tour.IsSafeForVehicle)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(PlanResponse{
		Tour:          res.Tour,
		ChargersAdded: res.ChargersAdded,
		Warning:       res.Warning,
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// StartRequest carries the tour to begin narrating.
type StartRequest struct {
	Tour *model.Tour `json:"tour"`
}

// HandleStart handles POST /api/tour/start
func (h *TourHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tour == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.ctrl.PrepareTour(r.Context(), req.Tour); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, narrator.ErrTourActive) {
			status = http.StatusConflict
		} else if errors.Is(err, narrator.ErrInvalidPOI) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	// The poll loop must outlive this request.
	if err := h.ctrl.StartMonitoring(context.WithoutCancel(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "started",
		"tour":   req.Tour.Name,
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// HandleStop handles POST /api/tour/stop
func (h *TourHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.StopTour(r.Context()); err != nil {
		if errors.Is(err, narrator.ErrNoTour) {
			http.Error(w, "no active tour", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "stopped"}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// ControlRequest represents a narration control command.
type ControlRequest struct {
	Action string `json:"action"` // "pause", "resume", "skip"
}

// HandleControl handles POST /api/tour/control
func (h *TourHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "pause":
		h.ctrl.Pause()
	case "resume":
		h.ctrl.Resume()
	case "skip":
		h.ctrl.Skip()
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	slog.Debug("API: Tour control", "action", req.Action)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"action": req.Action,
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// HandleStatus handles GET /api/tour/status
func (h *TourHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.ctrl.Status()); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
