package audio

import (
	"context"
	"math"
	"testing"
	"time"

	"roadtripgo/pkg/model"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Volume() != 1.0 {
		t.Errorf("Expected default volume 1.0, got %f", m.Volume())
	}
	if m.IsPlaying() || m.IsBusy() || m.IsPaused() {
		t.Error("expected idle state")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	m := New()

	m.SetVolume(1.5)
	if m.Volume() != 1.0 {
		t.Errorf("expected clamp to 1.0, got %f", m.Volume())
	}
	m.SetVolume(-0.2)
	if m.Volume() != 0.0 {
		t.Errorf("expected clamp to 0.0, got %f", m.Volume())
	}
}

func TestVolumeToPower(t *testing.T) {
	if got := volumeToPower(1.0); got != 0 {
		t.Errorf("volumeToPower(1.0) = %f, want 0 (unity gain)", got)
	}
	if got := volumeToPower(0.5); math.Abs(got+1) > 1e-9 {
		t.Errorf("volumeToPower(0.5) = %f, want -1", got)
	}
	if got := volumeToPower(0.0); got != -10 {
		t.Errorf("volumeToPower(0.0) = %f, want -10 (silent)", got)
	}
}

func TestPlayerPacesWithoutAudioFile(t *testing.T) {
	p := NewPlayer(New())
	n := &model.Narration{Title: "Silent", Duration: 20 * time.Millisecond}

	start := time.Now()
	if err := p.Play(context.Background(), n); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Play returned after %v, before the estimated duration", elapsed)
	}
}

func TestPlayerCancelled(t *testing.T) {
	p := NewPlayer(New())
	n := &model.Narration{Title: "Long", Duration: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := p.Play(ctx, n)
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Error("cancel did not interrupt playback wait")
	}
}

func TestPlayMissingFile(t *testing.T) {
	m := New()
	if err := m.Play("/nonexistent/path.mp3", nil); err == nil {
		t.Error("expected error for missing file")
	}
}
