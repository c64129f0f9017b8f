package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// AudioController defines the audio operations the API exposes. audio.Manager
// satisfies this.
type AudioController interface {
	IsPlaying() bool
	IsPaused() bool
	SetVolume(vol float64)
	Volume() float64
}

// AudioHandler handles audio control endpoints.
type AudioHandler struct {
	audio AudioController
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(audioMgr AudioController) *AudioHandler {
	return &AudioHandler{audio: audioMgr}
}

// AudioVolumeRequest represents a volume change request.
type AudioVolumeRequest struct {
	Volume float64 `json:"volume"`
}

// AudioStatusResponse represents the audio status.
type AudioStatusResponse struct {
	IsPlaying bool    `json:"is_playing"`
	IsPaused  bool    `json:"is_paused"`
	Volume    float64 `json:"volume"`
}

// HandleVolume handles POST /api/audio/volume
func (h *AudioHandler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	var req AudioVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.audio.SetVolume(req.Volume)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"volume": h.audio.Volume(),
	}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// HandleStatus handles GET /api/audio/status
func (h *AudioHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := AudioStatusResponse{
		IsPlaying: h.audio.IsPlaying(),
		IsPaused:  h.audio.IsPaused(),
		Volume:    h.audio.Volume(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
