package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"roadtripgo/pkg/version"
)

// NewServer creates and configures the HTTP server. It accepts handlers for
// all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, tourH *TourHandler, poisH *POIHandler, histH *HistoryHandler, voiceH *VoiceHandler, audioH *AudioHandler, eventsH *EventsHandler, statsH *StatsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	if statsH != nil {
		mux.Handle("GET /api/stats", statsH)
	}

	if tourH != nil {
		mux.HandleFunc("POST /api/tour/plan", tourH.HandlePlan)
		mux.HandleFunc("POST /api/tour/start", tourH.HandleStart)
		mux.HandleFunc("POST /api/tour/stop", tourH.HandleStop)
		mux.HandleFunc("POST /api/tour/control", tourH.HandleControl)
		mux.HandleFunc("GET /api/tour/status", tourH.HandleStatus)
	}

	if poisH != nil {
		mux.HandleFunc("GET /api/pois/nearby", poisH.HandleNearby)
		mux.HandleFunc("POST /api/pois", poisH.HandleAdd)
	}

	if histH != nil {
		mux.HandleFunc("GET /api/history", histH.HandleList)
		mux.HandleFunc("GET /api/history/stats", histH.HandleStats)
	}

	if voiceH != nil {
		mux.HandleFunc("GET /api/voice/prompt", voiceH.HandlePrompt)
		mux.HandleFunc("POST /api/voice/respond", voiceH.HandleRespond)
	}

	if audioH != nil {
		mux.HandleFunc("POST /api/audio/volume", audioH.HandleVolume)
		mux.HandleFunc("GET /api/audio/status", audioH.HandleStatus)
	}

	if eventsH != nil {
		mux.HandleFunc("GET /api/events", eventsH.HandleEvents)
	}

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow the response to flush.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
