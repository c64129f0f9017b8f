// Package telemetry defines the vehicle state feed the narrator polls.
package telemetry

import (
	"context"
	"errors"
	"time"
)

// ErrNotAvailable is returned when the source has no fix yet.
var ErrNotAvailable = errors.New("telemetry not available")

// Telemetry represents a snapshot of vehicle state.
type Telemetry struct {
	Latitude  float64 // Degrees
	Longitude float64 // Degrees
	SpeedMph  float64 // Miles per hour over ground
	Heading   float64 // Degrees true, 0-360

	TemperatureF   float64 // Ambient, Fahrenheit
	ElevationFt    float64 // Feet MSL
	BatteryPercent float64 // 0.0 - 1.0

	Timestamp time.Time
}

// Source provides vehicle telemetry snapshots.
type Source interface {
	// GetTelemetry returns the current state of the vehicle.
	GetTelemetry(ctx context.Context) (Telemetry, error)
	// Close cleans up resources associated with the source.
	Close() error
}
