package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"roadtripgo/pkg/narrator"
)

// EventSource provides a live event feed. narrator.Orchestrator satisfies
// this.
type EventSource interface {
	Subscribe() <-chan narrator.Event
	Unsubscribe(ch <-chan narrator.Event)
}

// EventsHandler streams orchestrator events over a websocket.
type EventsHandler struct {
	source   EventSource
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(source EventSource) *EventsHandler {
	return &EventsHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local single-user service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleEvents handles GET /api/events
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("API: Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := h.source.Subscribe()
	defer h.source.Unsubscribe(events)

	// Reader goroutine notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("API: Websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
