package narrator

import (
	"time"

	"roadtripgo/pkg/model"
)

// EventType classifies orchestrator events for subscribers.
type EventType string

const (
	EventTourStarted        EventType = "tour_started"
	EventTourStopped        EventType = "tour_stopped"
	EventPhaseChange        EventType = "phase_change"
	EventNarrationStarted   EventType = "narration_started"
	EventNarrationCompleted EventType = "narration_completed"
	EventNarrationFailed    EventType = "narration_failed"
	EventPromptOpen         EventType = "prompt_open"
)

// Event is one orchestrator state change, published to subscribers.
type Event struct {
	Type      EventType            `json:"type"`
	TourID    string               `json:"tour_id,omitempty"`
	POIID     string               `json:"poi_id,omitempty"`
	POIName   string               `json:"poi_name,omitempty"`
	Phase     model.NarrationPhase `json:"phase,omitempty"`
	Title     string               `json:"title,omitempty"`
	Detail    string               `json:"detail,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Subscribe registers an event channel. Slow subscribers lose events rather
// than stalling the poll loop.
func (o *Orchestrator) Subscribe() <-chan Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan Event, 32)
	o.subs = append(o.subs, ch)
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (o *Orchestrator) Unsubscribe(ch <-chan Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, sub := range o.subs {
		if sub == ch {
			o.subs = append(o.subs[:i], o.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

func (o *Orchestrator) emit(ev Event) {
	ev.Timestamp = time.Now()
	o.mu.RLock()
	defer o.mu.RUnlock()
	ev.TourID = o.tourIDLocked()
	for _, sub := range o.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

func (o *Orchestrator) tourIDLocked() string {
	if o.tour == nil {
		return ""
	}
	return o.tour.ID
}
