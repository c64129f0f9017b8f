// Package planner validates and repairs multi-stop EV itineraries, inserting
// charging stops where the battery cannot cover a leg.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadtripgo/pkg/energy"
	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

// POIFinder locates POIs near a point. The planner uses it to find
// EV-charger POIs for unrepairable legs.
type POIFinder interface {
	FindNearby(ctx context.Context, loc geo.Point, radiusMiles float64, categories []string) ([]*model.POI, error)
}

// Config holds the planning policy knobs.
type Config struct {
	SafetyBuffer        float64       // extra battery margin fraction (default 0.15)
	ChargeTarget        float64       // battery fraction after a charging stop (default 0.80)
	ChargerSearchMiles  float64       // search radius around the leg midpoint (default 50)
	ChargeDwell         time.Duration // dwell at an inserted charging stop (default 30m)
	FallbackAvgSpeedMph float64       // duration estimate fallback when conditions carry no speed
}

// DefaultConfig returns the stock planning policy.
func DefaultConfig() Config {
	return Config{
		SafetyBuffer:        energy.DefaultSafetyBuffer,
		ChargeTarget:        0.80,
		ChargerSearchMiles:  50,
		ChargeDwell:         30 * time.Minute,
		FallbackAvgSpeedMph: 45,
	}
}

// Result is the outcome of planning one tour. Unrepairable legs are reported
// through Warning, never as an error; the tour is still returned with
// IsSafeForVehicle=false so the caller can decide whether to proceed.
type Result struct {
	Tour          *model.Tour
	ChargersAdded int
	Warning       string
}

// Planner builds and repairs tours. Safe for concurrent callers; it holds no
// mutable state.
type Planner struct {
	finder POIFinder
	cfg    Config
}

// New creates a Planner.
func New(finder POIFinder, cfg Config) *Planner {
	if cfg.ChargeTarget <= 0 {
		cfg.ChargeTarget = 0.80
	}
	if cfg.ChargerSearchMiles <= 0 {
		cfg.ChargerSearchMiles = 50
	}
	if cfg.ChargeDwell <= 0 {
		cfg.ChargeDwell = 30 * time.Minute
	}
	if cfg.FallbackAvgSpeedMph <= 0 {
		cfg.FallbackAvgSpeedMph = 45
	}
	return &Planner{finder: finder, cfg: cfg}
}

// CreateTour builds one waypoint per POI in input order, validates the tour
// against the vehicle's range, and repairs it with charging stops when the
// validation fails.
func (p *Planner) CreateTour(ctx context.Context, name string, pois []*model.POI, v model.Vehicle, startPct float64, cond model.DrivingConditions) (*Result, error) {
	if len(pois) == 0 {
		return nil, fmt.Errorf("cannot create tour %q: no POIs", name)
	}

	tour := &model.Tour{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    model.TourStatusDraft,
		CreatedAt: time.Now(),
	}
	for i, poi := range pois {
		tour.Waypoints = append(tour.Waypoints, &model.Waypoint{
			ID:       uuid.NewString(),
			POI:      poi,
			Lat:      poi.Lat,
			Lon:      poi.Lon,
			Sequence: i,
		})
	}
	p.refreshTotals(tour, cond)

	if p.ValidateTourSafety(tour, v, startPct, cond) {
		tour.IsSafeForVehicle = true
		tour.Status = model.TourStatusPlanned
		slog.Info("Planner: Tour is safe without charging stops", "tour", name, "miles", fmt.Sprintf("%.1f", tour.TotalMiles))
		return &Result{Tour: tour}, nil
	}

	added, warning := p.AddChargingStops(ctx, tour, v, startPct, cond)
	p.refreshTotals(tour, cond)
	tour.IsSafeForVehicle = p.ValidateTourSafety(tour, v, startPct, cond)
	tour.Status = model.TourStatusPlanned

	slog.Info("Planner: Tour repaired",
		"tour", name,
		"chargers_added", added,
		"safe", tour.IsSafeForVehicle,
		"warning", warning)

	return &Result{Tour: tour, ChargersAdded: added, Warning: warning}, nil
}

// ValidateTourSafety walks the ordered waypoints tracking the battery level,
// short-circuiting on the first unreachable leg. It is a linear single pass
// and idempotent: re-running it on the same inputs yields the same result.
func (p *Planner) ValidateTourSafety(tour *model.Tour, v model.Vehicle, startPct float64, cond model.DrivingConditions) bool {
	battery := startPct
	prev := geo.Point{}
	havePrev := false

	for _, wp := range tour.Waypoints {
		loc := geo.Point{Lat: wp.Lat, Lon: wp.Lon}
		if havePrev {
			legMiles := geo.DistanceMiles(prev, loc)
			required := energy.RequiredBatteryWithBuffer(v, legMiles, cond, p.cfg.SafetyBuffer)
			if battery < required {
				return false
			}
			battery -= required
		}
		wp.ExpectedArrivalBattery = battery
		if wp.IsChargingStop {
			battery = p.cfg.ChargeTarget
		}
		wp.ExpectedDepartureBattery = battery
		prev = loc
		havePrev = true
	}
	return true
}

// AddChargingStops repairs unreachable legs with a greedy single forward
// pass: each unsafe leg gets at most one charger, found near the leg's
// geographic midpoint. Already-walked legs are never revisited; this trades
// optimality for linear time and predictability. Returns the number of stops
// inserted and a warning describing any legs that could not be repaired.
func (p *Planner) AddChargingStops(ctx context.Context, tour *model.Tour, v model.Vehicle, startPct float64, cond model.DrivingConditions) (int, string) {
	battery := startPct
	added := 0
	var warnings []string
	inserted := make(map[string]bool)

	i := 1
	for i < len(tour.Waypoints) {
		prev := tour.Waypoints[i-1]
		wp := tour.Waypoints[i]
		from := geo.Point{Lat: prev.Lat, Lon: prev.Lon}
		to := geo.Point{Lat: wp.Lat, Lon: wp.Lon}
		legMiles := geo.DistanceMiles(from, to)
		required := energy.RequiredBatteryWithBuffer(v, legMiles, cond, p.cfg.SafetyBuffer)

		if battery >= required {
			battery -= required
			if wp.IsChargingStop {
				battery = p.cfg.ChargeTarget
			}
			i++
			continue
		}

		// At most one repair per leg: a destination keeps its first inserted
		// charger, and an inserted stop never gets another charger in front
		// of it. Without this bound a single charger near the midpoint would
		// be re-inserted forever when the repaired leg is still unreachable.
		var charger *model.POI
		if !inserted[wp.ID] {
			charger = p.findCharger(ctx, geo.Midpoint(from, to), prev, wp)
		}
		if charger == nil {
			if inserted[wp.ID] {
				warnings = append(warnings, fmt.Sprintf("leg to %s remains unreachable after charging", wp.DisplayName()))
			} else {
				warnings = append(warnings, fmt.Sprintf("no charger within %.0fmi of leg to %s", p.cfg.ChargerSearchMiles, wp.DisplayName()))
			}
			// Leg stays unrepaired. Keep walking so the rest of the tour is
			// still annotated; battery may go negative for reporting only.
			battery -= required
			if wp.IsChargingStop {
				battery = p.cfg.ChargeTarget
			}
			i++
			continue
		}

		stop := &model.Waypoint{
			ID:             uuid.NewString(),
			POI:            charger,
			Lat:            charger.Lat,
			Lon:            charger.Lon,
			IsChargingStop: true,
			Dwell:          p.cfg.ChargeDwell,
		}
		tour.Waypoints = append(tour.Waypoints[:i], append([]*model.Waypoint{stop}, tour.Waypoints[i:]...)...)
		inserted[stop.ID] = true
		inserted[wp.ID] = true
		added++
		slog.Info("Planner: Inserted charging stop", "charger", charger.Name, "before", wp.DisplayName())
		// Continue the walk at the inserted stop; the prev->charger leg is
		// evaluated on the next iteration.
	}

	renumber(tour)
	return added, strings.Join(warnings, "; ")
}

// findCharger returns the EV-charger POI nearest to the midpoint, excluding
// the POIs at either end of the leg.
func (p *Planner) findCharger(ctx context.Context, mid geo.Point, prev, dest *model.Waypoint) *model.POI {
	chargers, err := p.finder.FindNearby(ctx, mid, p.cfg.ChargerSearchMiles, []string{model.CategoryEVCharger})
	if err != nil {
		slog.Warn("Planner: Charger lookup failed", "error", err)
		return nil
	}

	var best *model.POI
	bestDist := math.Inf(1)
	for _, c := range chargers {
		if dest.POI != nil && c.ID == dest.POI.ID {
			continue
		}
		if prev.POI != nil && c.ID == prev.POI.ID {
			continue
		}
		d := geo.DistanceMiles(mid, geo.Point{Lat: c.Lat, Lon: c.Lon})
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// refreshTotals recomputes cumulative distance and the duration estimate.
func (p *Planner) refreshTotals(tour *model.Tour, cond model.DrivingConditions) {
	total := 0.0
	var dwell time.Duration
	for i, wp := range tour.Waypoints {
		if i > 0 {
			prev := tour.Waypoints[i-1]
			total += geo.DistanceMiles(geo.Point{Lat: prev.Lat, Lon: prev.Lon}, geo.Point{Lat: wp.Lat, Lon: wp.Lon})
		}
		dwell += wp.Dwell
	}
	tour.TotalMiles = total

	speed := cond.AverageSpeedMph
	if speed <= 0 {
		speed = p.cfg.FallbackAvgSpeedMph
	}
	tour.EstimatedDuration = time.Duration(total/speed*float64(time.Hour)) + dwell
}

// renumber makes waypoint sequence numbers contiguous from 0.
func renumber(tour *model.Tour) {
	for i, wp := range tour.Waypoints {
		wp.Sequence = i
	}
}
