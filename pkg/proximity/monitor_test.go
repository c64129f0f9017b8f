package proximity

import (
	"math"
	"testing"
	"time"

	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

func testPOI() *model.POI {
	return &model.POI{ID: "poi-1", Name: "Test Landmark", Lat: 40.0, Lon: -105.0}
}

func TestUpdateSessionDistanceAndETA(t *testing.T) {
	m := New(DefaultThresholds())
	s := model.NewSession(testPOI())

	// ~10 miles due west of the POI, heading east toward it.
	loc := geo.PointAt(geo.Point{Lat: 40.0, Lon: -105.0}, 10, 270)
	m.UpdateSession(s, loc, 60, 90)

	if math.Abs(s.DistanceMiles-10) > 0.1 {
		t.Errorf("DistanceMiles = %v, want ~10", s.DistanceMiles)
	}
	// 10mi at 60mph = 600s
	if math.Abs(s.ETASeconds-600) > 10 {
		t.Errorf("ETASeconds = %v, want ~600", s.ETASeconds)
	}
	if math.Abs(s.RelativeBearingDeg) > 5 {
		t.Errorf("RelativeBearingDeg = %v, want ~0 (POI dead ahead)", s.RelativeBearingDeg)
	}
}

func TestUpdateSessionZeroSpeed(t *testing.T) {
	m := New(DefaultThresholds())
	s := model.NewSession(testPOI())

	m.UpdateSession(s, geo.Point{Lat: 40.1, Lon: -105.0}, 0, 0)
	if !math.IsInf(s.ETASeconds, 1) {
		t.Errorf("ETASeconds = %v, want +Inf at zero speed", s.ETASeconds)
	}
}

func TestNextPhaseLadder(t *testing.T) {
	m := New(DefaultThresholds())
	poi := geo.Point{Lat: 40.0, Lon: -105.0}

	s := model.NewSession(testPOI())

	// Far out: pending.
	m.UpdateSession(s, geo.PointAt(poi, 20, 270), 60, 90)
	if got := m.NextPhase(s); got != model.PhasePending {
		t.Errorf("far out: phase = %v, want pending", got)
	}

	// ~3.5 minutes out at 60mph = 3.5 miles: approaching.
	m.UpdateSession(s, geo.PointAt(poi, 3.5, 270), 60, 90)
	if got := m.NextPhase(s); got != model.PhaseApproaching {
		t.Errorf("teaser window: phase = %v, want approaching", got)
	}
	s.CurrentPhase = model.PhaseApproaching

	// ~1 minute out = 1 mile: detailed.
	m.UpdateSession(s, geo.PointAt(poi, 1.0, 270), 60, 90)
	if got := m.NextPhase(s); got != model.PhaseDetailed {
		t.Errorf("detail window: phase = %v, want detailed", got)
	}
	s.CurrentPhase = model.PhaseDetailed

	// Inside arrival radius.
	m.UpdateSession(s, geo.PointAt(poi, 0.05, 270), 30, 90)
	if got := m.NextPhase(s); got != model.PhaseArrival {
		t.Errorf("arrival radius: phase = %v, want arrival", got)
	}
}

func TestNextPhaseNeverRegresses(t *testing.T) {
	m := New(DefaultThresholds())
	poi := geo.Point{Lat: 40.0, Lon: -105.0}

	s := model.NewSession(testPOI())
	s.CurrentPhase = model.PhaseDetailed

	// Back out to teaser range; phase must stay detailed.
	m.UpdateSession(s, geo.PointAt(poi, 3.5, 270), 60, 90)
	// Distance grew but the bearing still points at the POI; a single
	// receding poll with the POI ahead is not a pass.
	if got := m.NextPhase(s); got != model.PhaseDetailed {
		t.Errorf("phase = %v, want detailed (no regression)", got)
	}
}

func TestPassedDetectionByBearing(t *testing.T) {
	m := New(DefaultThresholds())
	poi := geo.Point{Lat: 40.0, Lon: -105.0}
	s := model.NewSession(testPOI())
	s.CurrentPhase = model.PhaseApproaching

	// Drive eastbound past the POI on a parallel track 0.5mi north.
	track := geo.PointAt(poi, 0.5, 0)
	for _, offset := range []float64{-3, -1, 1, 3} {
		var loc geo.Point
		if offset < 0 {
			loc = geo.PointAt(track, -offset, 270)
		} else {
			loc = geo.PointAt(track, offset, 90)
		}
		m.UpdateSession(s, loc, 60, 90)
	}

	if got := m.NextPhase(s); got != model.PhasePassed {
		t.Errorf("phase = %v, want passed after driving by", got)
	}
}

func TestPassedRequiresCloseApproach(t *testing.T) {
	m := New(DefaultThresholds())
	poi := geo.Point{Lat: 40.0, Lon: -105.0}
	s := model.NewSession(testPOI())

	// Receding the whole time, but never closer than ~10 miles.
	for _, d := range []float64{10, 12, 14, 16} {
		m.UpdateSession(s, geo.PointAt(poi, d, 0), 60, 0)
	}

	if got := m.NextPhase(s); got == model.PhasePassed {
		t.Error("distant POI should not be marked passed")
	}
}

func TestPassedNotFiredFromArrival(t *testing.T) {
	m := New(DefaultThresholds())
	poi := geo.Point{Lat: 40.0, Lon: -105.0}
	s := model.NewSession(testPOI())
	s.CurrentPhase = model.PhaseArrival
	s.ClosestApproachMiles = 0.05

	// Driving away after arrival stays in arrival until the handler decides.
	for _, d := range []float64{0.2, 0.5, 1.0, 2.0} {
		m.UpdateSession(s, geo.PointAt(poi, d, 90), 30, 90)
	}
	if got := m.NextPhase(s); got != model.PhaseArrival {
		t.Errorf("phase = %v, want arrival preserved", got)
	}
}

func TestThresholdsAreTunable(t *testing.T) {
	custom := Thresholds{
		TeaserWindow:        10 * time.Minute,
		DetailWindow:        5 * time.Minute,
		ArrivalRadiusMiles:  0.5,
		ApproachRadiusMiles: 5,
		RecedingPolls:       2,
	}
	m := New(custom)
	poi := geo.Point{Lat: 40.0, Lon: -105.0}
	s := model.NewSession(testPOI())

	// 8 minutes out at 60mph = 8 miles; stock policy says pending, custom
	// policy says approaching.
	m.UpdateSession(s, geo.PointAt(poi, 8, 270), 60, 90)
	if got := m.NextPhase(s); got != model.PhaseApproaching {
		t.Errorf("phase = %v, want approaching under widened window", got)
	}
}
