// Package proximity decides narration phases from vehicle position and speed.
package proximity

import (
	"math"
	"time"

	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

// Thresholds are the tunable phase-transition policy constants. They are
// deployment policy, not contracts tied to any particular POI.
type Thresholds struct {
	// TeaserWindow: ETA at which the approaching teaser becomes due.
	TeaserWindow time.Duration
	// DetailWindow: ETA at which the detailed narration becomes due.
	DetailWindow time.Duration
	// ArrivalRadiusMiles: distance below which the vehicle has arrived.
	ArrivalRadiusMiles float64
	// ApproachRadiusMiles: the vehicle must have come at least this close
	// before a receding track counts as "passed".
	ApproachRadiusMiles float64
	// RecedingPolls: consecutive polls with growing distance before the POI
	// counts as passed regardless of bearing.
	RecedingPolls int
}

// DefaultThresholds returns the stock policy: teaser at ~4min out, detail at
// ~90s, arrival within 0.1mi.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TeaserWindow:        4 * time.Minute,
		DetailWindow:        90 * time.Second,
		ArrivalRadiusMiles:  0.1,
		ApproachRadiusMiles: 2.0,
		RecedingPolls:       3,
	}
}

// Monitor applies the threshold policy to narration sessions.
type Monitor struct {
	t Thresholds
}

// New creates a Monitor with the given thresholds.
func New(t Thresholds) *Monitor {
	if t.RecedingPolls <= 0 {
		t.RecedingPolls = 3
	}
	return &Monitor{t: t}
}

// UpdateSession recomputes the session's distance, ETA and pass-detection
// bookkeeping from the current vehicle position, speed and heading.
func (m *Monitor) UpdateSession(s *model.NarrationSession, loc geo.Point, speedMph, headingDeg float64) {
	poi := geo.Point{Lat: s.POI.Lat, Lon: s.POI.Lon}

	prev := s.DistanceMiles
	dist := geo.DistanceMiles(loc, poi)

	s.DistanceMiles = dist
	if speedMph > 0 {
		s.ETASeconds = dist / speedMph * 3600.0
	} else {
		s.ETASeconds = math.Inf(1)
	}

	s.RelativeBearingDeg = geo.NormalizeAngle(geo.Bearing(loc, poi) - headingDeg)

	if dist < s.ClosestApproachMiles {
		s.ClosestApproachMiles = dist
	}

	// Receding streak only counts once we have a previous sample.
	if s.Updated && dist > prev {
		s.RecedingPolls++
	} else {
		s.RecedingPolls = 0
	}
	s.Updated = true
}

// NextPhase returns the phase the session should be in. Transitions are
// monotonic along the forward ladder; passed is reachable from any
// non-terminal phase. The current phase is returned when nothing changes.
// Rungs can be skipped when polls are sparse: a session first sampled inside
// the arrival radius goes straight from pending to arrival.
func (m *Monitor) NextPhase(s *model.NarrationSession) model.NarrationPhase {
	cur := s.CurrentPhase
	if cur.Terminal() {
		return cur
	}

	if m.hasPassed(s) {
		return model.PhasePassed
	}

	candidate := cur
	switch {
	case s.DistanceMiles <= m.t.ArrivalRadiusMiles:
		candidate = model.PhaseArrival
	case s.ETASeconds <= m.t.DetailWindow.Seconds():
		candidate = model.PhaseDetailed
	case s.ETASeconds <= m.t.TeaserWindow.Seconds():
		candidate = model.PhaseApproaching
	}

	// Never regress to an earlier phase within the same tour run.
	if candidate.Rank() > cur.Rank() {
		return candidate
	}
	return cur
}

// hasPassed reports whether the vehicle drove past the POI without entering
// the arrival radius: it came close, and is now moving away with the POI
// behind the vehicle, or has been receding for several polls straight.
func (m *Monitor) hasPassed(s *model.NarrationSession) bool {
	if s.CurrentPhase == model.PhaseArrival {
		return false
	}
	if s.ClosestApproachMiles > m.t.ApproachRadiusMiles {
		return false
	}
	if s.RecedingPolls >= m.t.RecedingPolls {
		return true
	}
	return s.RecedingPolls >= 1 && math.Abs(s.RelativeBearingDeg) > 90
}
