package model

import (
	"math"
	"time"
)

// NarrationPhase is a session's position in the narration lifecycle for one
// POI. Phases advance pending -> approaching -> detailed -> arrival ->
// guidedTour; passed is reachable from any non-terminal phase.
type NarrationPhase string

const (
	PhasePending     NarrationPhase = "pending"
	PhaseApproaching NarrationPhase = "approaching"
	PhaseDetailed    NarrationPhase = "detailed"
	PhaseArrival     NarrationPhase = "arrival"
	PhaseGuidedTour  NarrationPhase = "guidedTour"
	PhasePassed      NarrationPhase = "passed"
)

// phaseRank orders the forward progression. passed sits outside the ladder.
var phaseRank = map[NarrationPhase]int{
	PhasePending:     0,
	PhaseApproaching: 1,
	PhaseDetailed:    2,
	PhaseArrival:     3,
	PhaseGuidedTour:  4,
}

// Rank returns the position of the phase on the forward ladder, or -1 for
// passed.
func (p NarrationPhase) Rank() int {
	if r, ok := phaseRank[p]; ok {
		return r
	}
	return -1
}

// Terminal reports whether no further phase transitions are possible.
func (p NarrationPhase) Terminal() bool {
	return p == PhasePassed || p == PhaseGuidedTour
}

// NarrationSession tracks one POI through the narration lifecycle.
// Mutable fields are owned exclusively by the orchestrator for the lifetime
// of one active tour.
type NarrationSession struct {
	POI *POI

	CurrentPhase NarrationPhase
	// DistanceMiles is the current great-circle distance to the POI, >= 0.
	DistanceMiles float64
	// ETASeconds is +Inf when speed is zero or unknown.
	ETASeconds float64

	TeaserPlayed        bool
	DetailedPlayed      bool
	ArrivalPromptPlayed bool
	UserWantsMore       bool
	UserWantsTour       bool

	// Pass-detection bookkeeping, maintained by the proximity monitor.
	ClosestApproachMiles float64
	RecedingPolls        int
	RelativeBearingDeg   float64
	Updated              bool
}

// NewSession creates a pending session for the POI.
func NewSession(poi *POI) *NarrationSession {
	return &NarrationSession{
		POI:                  poi,
		CurrentPhase:         PhasePending,
		ETASeconds:           math.Inf(1),
		ClosestApproachMiles: math.Inf(1),
	}
}

// NarrationStatus is the lifecycle of a single generated narration.
type NarrationStatus string

const (
	NarrationQueued    NarrationStatus = "queued"
	NarrationScheduled NarrationStatus = "scheduled"
	NarrationPlaying   NarrationStatus = "playing"
	NarrationCompleted NarrationStatus = "completed"
	NarrationSkipped   NarrationStatus = "skipped"
	NarrationCancelled NarrationStatus = "cancelled"
)

// Narration is an immutable generated script ready for playback.
// Only Status and the timestamps change after creation.
type Narration struct {
	ID      string `json:"id"`
	POIID   string `json:"poi_id"`
	POIName string `json:"poi_name"`
	Title   string `json:"title"`
	Text    string `json:"text"`

	// Duration is the estimated spoken duration.
	Duration time.Duration `json:"duration"`
	Source   string        `json:"source"` // generation source tag, e.g. "gemini"

	// AudioPath is set when a pre-rendered audio file exists for the script.
	AudioPath string `json:"audio_path,omitempty"`

	Status      NarrationStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at,omitempty"`
	CompletedAt time.Time       `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PlaybackState tracks whether audio is flowing for the whole tour, as
// opposed to the per-session phase which tracks what plays.
type PlaybackState string

const (
	PlaybackIdle      PlaybackState = "idle"
	PlaybackPreparing PlaybackState = "preparing"
	PlaybackPlaying   PlaybackState = "playing"
	PlaybackPaused    PlaybackState = "paused"
	PlaybackCompleted PlaybackState = "completed"
	PlaybackFailed    PlaybackState = "failed"
)
