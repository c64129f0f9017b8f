package narrator

import (
	"context"
	"time"

	"roadtripgo/pkg/model"
	"roadtripgo/pkg/telemetry"
	"roadtripgo/pkg/voice"
)

// Generator produces narration scripts. content.Generator satisfies this.
type Generator interface {
	Generate(ctx context.Context, poi *model.POI, intent string, target time.Duration) (*model.Narration, error)
}

// AudioPlayer plays one narration at a time, blocking until it finishes or
// ctx is cancelled. audio.Player satisfies this.
type AudioPlayer interface {
	Play(ctx context.Context, n *model.Narration) error
	Pause()
	Resume()
	Stop()
}

// Interactor asks the driver yes/no questions. voice.Prompter satisfies this.
type Interactor interface {
	Ask(ctx context.Context, prompt string, timeout time.Duration) (voice.Response, error)
}

// ImageFetcher resolves display images for POIs. images.WikipediaFetcher
// satisfies this.
type ImageFetcher interface {
	Thumbnail(ctx context.Context, title string) (string, error)
}

// TelemetrySource provides the vehicle state the poll loop reads.
type TelemetrySource interface {
	GetTelemetry(ctx context.Context) (telemetry.Telemetry, error)
}

// HistoryRecorder persists completed tour runs. history.Store satisfies this.
type HistoryRecorder interface {
	SaveTour(ctx context.Context, entry *model.HistoryEntry) error
}
