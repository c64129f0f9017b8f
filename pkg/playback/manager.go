package playback

import (
	"fmt"
	"log/slog"
	"sync"

	"roadtripgo/pkg/model"
)

// maxQueueLen bounds the queue for non-priority items. Priority items
// (arrival prompts, guided tours) always get in.
const maxQueueLen = 5

// validTransitions is the playback state machine. Any state may return to
// idle (stop), completed and failed may restart via preparing.
var validTransitions = map[model.PlaybackState][]model.PlaybackState{
	model.PlaybackIdle:      {model.PlaybackPreparing},
	model.PlaybackPreparing: {model.PlaybackPlaying, model.PlaybackFailed, model.PlaybackIdle},
	model.PlaybackPlaying:   {model.PlaybackPaused, model.PlaybackCompleted, model.PlaybackFailed, model.PlaybackIdle},
	model.PlaybackPaused:    {model.PlaybackPlaying, model.PlaybackIdle},
	model.PlaybackCompleted: {model.PlaybackPreparing, model.PlaybackIdle},
	model.PlaybackFailed:    {model.PlaybackPreparing, model.PlaybackIdle},
}

// Manager manages the narration playback queue and the playback state.
type Manager struct {
	mu    sync.RWMutex
	queue []*model.Narration
	state model.PlaybackState
}

// NewManager creates a new playback queue manager in the idle state.
func NewManager() *Manager {
	return &Manager{
		queue: make([]*model.Narration, 0),
		state: model.PlaybackIdle,
	}
}

// State returns the current playback state.
func (m *Manager) State() model.PlaybackState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Transition moves the playback state machine to the given state, rejecting
// moves the machine does not allow.
func (m *Manager) Transition(to model.PlaybackState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == to {
		return nil
	}
	for _, allowed := range validTransitions[m.state] {
		if allowed == to {
			slog.Debug("Playback: State transition", "from", m.state, "to", to)
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid playback transition %s -> %s", m.state, to)
}

// Enqueue adds a narration to the playback queue and marks it queued.
// Priority items are prepended and bypass the queue cap.
func (m *Manager) Enqueue(n *model.Narration, priority bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) >= maxQueueLen && !priority {
		slog.Info("Playback: Queue full, dropping low priority item", "title", n.Title)
		return false
	}

	n.Status = model.NarrationQueued
	if priority {
		m.queue = append([]*model.Narration{n}, m.queue...)
	} else {
		m.queue = append(m.queue, n)
	}
	slog.Debug("Playback: Enqueued narration", "title", n.Title, "priority", priority, "queue_len", len(m.queue))
	return true
}

// Pop retrieves and removes the next narration from the queue, marking it
// scheduled.
func (m *Manager) Pop() *model.Narration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	n := m.queue[0]
	m.queue = m.queue[1:]
	n.Status = model.NarrationScheduled
	return n
}

// Peek returns the head of the queue without removing it.
func (m *Manager) Peek() *model.Narration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.queue) == 0 {
		return nil
	}
	return m.queue[0]
}

// Count returns the number of items in the queue.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queue)
}

// Clear empties the queue, marking every pending narration cancelled.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.queue {
		n.Status = model.NarrationCancelled
	}
	m.queue = make([]*model.Narration, 0)
}

// Promote moves the first queued narration for the given POI to the front
// of the queue. Returns true if found and promoted.
func (m *Manager) Promote(poiID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range m.queue {
		if n.POIID == poiID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			m.queue = append([]*model.Narration{n}, m.queue...)
			return true
		}
	}
	return false
}

// Remove drops all queued narrations for the given POI, marking them
// skipped. Returns the number removed.
func (m *Manager) Remove(poiID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.queue[:0]
	removed := 0
	for _, n := range m.queue {
		if n.POIID == poiID {
			n.Status = model.NarrationSkipped
			removed++
			continue
		}
		kept = append(kept, n)
	}
	m.queue = kept
	return removed
}

// HasPOI checks if a narration for the given POI is in the queue.
func (m *Manager) HasPOI(poiID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.queue {
		if n.POIID == poiID {
			return true
		}
	}
	return false
}
