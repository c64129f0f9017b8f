package model

import (
	"time"
)

// POI represents a Point of Interest along a route.
type POI struct {
	ID       string `json:"id"` // Primary Key
	Source   string `json:"source"`
	Name     string `json:"name"`
	Category string `json:"category"` // e.g. "Landmark", "EVCharger"

	// Coordinates
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Display data
	Summary      string `json:"summary"`
	ThumbnailURL string `json:"thumbnail_url"`

	CreatedAt time.Time `json:"created_at"`
}

// CategoryEVCharger marks POIs usable as charging stops.
const CategoryEVCharger = "EVCharger"

// Vehicle describes the EV the tour is planned for.
// Read-only during range and planning computations.
type Vehicle struct {
	Name                  string   `json:"name"`
	BatteryCapacityKWh    float64  `json:"battery_capacity_kwh"`
	ConsumptionKWhPerMile float64  `json:"consumption_kwh_per_mile"`
	RatedRangeMiles       float64  `json:"rated_range_miles"`
	ChargingPorts         []string `json:"charging_ports"` // e.g. "CCS", "NACS"
}

// DrivingConditions are environmental inputs to range math.
// Passed by value, not owned by any entity.
type DrivingConditions struct {
	TemperatureF      float64 `json:"temperature_f"`
	ElevationChangeFt float64 `json:"elevation_change_ft"`
	AverageSpeedMph   float64 `json:"average_speed_mph"`
	ColdSoak          bool    `json:"cold_soak"`
	ColdSoakHours     float64 `json:"cold_soak_hours"`
}

// StandardConditions returns mild weather with no elevation change.
func StandardConditions() DrivingConditions {
	return DrivingConditions{TemperatureF: 65, AverageSpeedMph: 45}
}

// Waypoint is one stop in a Tour. Sequence numbers are contiguous and
// monotonic; they are renumbered whenever charging stops are inserted.
type Waypoint struct {
	ID             string        `json:"id"`
	POI            *POI          `json:"poi,omitempty"`
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Sequence       int           `json:"sequence"`
	IsChargingStop bool          `json:"is_charging_stop"`
	Dwell          time.Duration `json:"dwell"`

	// Expected battery fractions, filled in by the planner walk.
	ExpectedArrivalBattery   float64 `json:"expected_arrival_battery"`
	ExpectedDepartureBattery float64 `json:"expected_departure_battery"`
}

// DisplayName returns the best available name for the waypoint.
func (w *Waypoint) DisplayName() string {
	if w.POI != nil && w.POI.Name != "" {
		return w.POI.Name
	}
	return w.ID
}

// TourStatus describes the lifecycle of a planned tour.
type TourStatus string

const (
	TourStatusDraft     TourStatus = "draft"
	TourStatusPlanned   TourStatus = "planned"
	TourStatusActive    TourStatus = "active"
	TourStatusCompleted TourStatus = "completed"
)

// Tour is an ordered waypoint list with planning metadata.
// IsSafeForVehicle is true only if every waypoint is reachable under the
// planner's validation walk.
type Tour struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Waypoints         []*Waypoint   `json:"waypoints"`
	Status            TourStatus    `json:"status"`
	TotalMiles        float64       `json:"total_miles"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	IsSafeForVehicle  bool          `json:"is_safe_for_vehicle"`
	CreatedAt         time.Time     `json:"created_at"`
}
