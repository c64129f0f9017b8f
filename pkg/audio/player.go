package audio

import (
	"context"
	"log/slog"
	"time"

	"roadtripgo/pkg/model"
)

// Player plays one narration at a time, blocking until it finishes. When a
// narration has no rendered audio file it holds the floor for the estimated
// spoken duration instead, so the pacing stays realistic in text-only mode.
type Player struct {
	mgr *Manager
}

// NewPlayer wraps a Manager in the blocking per-narration interface.
func NewPlayer(mgr *Manager) *Player {
	return &Player{mgr: mgr}
}

// Play blocks until the narration finishes or ctx is cancelled. Cancelling
// stops the speaker.
func (p *Player) Play(ctx context.Context, n *model.Narration) error {
	if n.AudioPath == "" {
		slog.Info("Audio: No rendered audio, pacing by estimated duration",
			"title", n.Title, "duration", n.Duration.Round(time.Second))
		select {
		case <-time.After(n.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	if err := p.mgr.Play(n.AudioPath, func() { close(done) }); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.mgr.Stop()
		return ctx.Err()
	}
}

// Pause pauses current playback.
func (p *Player) Pause() { p.mgr.Pause() }

// Resume resumes paused playback.
func (p *Player) Resume() { p.mgr.Resume() }

// Stop stops current playback.
func (p *Player) Stop() { p.mgr.Stop() }
