package telemetry

import (
	"context"
	"testing"
	"time"

	"roadtripgo/pkg/config"
	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

var simVehicle = model.Vehicle{
	BatteryCapacityKWh:    62,
	ConsumptionKWhPerMile: 0.268,
	RatedRangeMiles:       231,
}

func simConfig(speed float64) config.DriveSimConfig {
	return config.DriveSimConfig{
		StartLat:     40.0150,
		StartLon:     -105.2705,
		SpeedMph:     speed,
		TemperatureF: 65,
	}
}

func TestDriveSimParkedWithoutRoute(t *testing.T) {
	d := NewDriveSim(simConfig(45), simVehicle)
	defer d.Close()

	time.Sleep(250 * time.Millisecond)
	tel, err := d.GetTelemetry(context.Background())
	if err != nil {
		t.Fatalf("GetTelemetry: %v", err)
	}
	if tel.SpeedMph != 0 {
		t.Errorf("expected parked vehicle, speed = %f", tel.SpeedMph)
	}
	if tel.Latitude != 40.0150 || tel.Longitude != -105.2705 {
		t.Errorf("vehicle moved without a route: %f, %f", tel.Latitude, tel.Longitude)
	}
	if tel.BatteryPercent != 1.0 {
		t.Errorf("battery drained while parked: %f", tel.BatteryPercent)
	}
}

func TestDriveSimFollowsRoute(t *testing.T) {
	// Unrealistic speed so the test covers distance quickly.
	d := NewDriveSim(simConfig(36000), simVehicle)
	defer d.Close()

	start := geo.Point{Lat: 40.0150, Lon: -105.2705}
	dest := geo.PointAt(start, 5, 90)
	d.SetRoute([]geo.Point{dest})

	deadline := time.After(3 * time.Second)
	for {
		tel, _ := d.GetTelemetry(context.Background())
		pos := geo.Point{Lat: tel.Latitude, Lon: tel.Longitude}
		if geo.DistanceMiles(pos, dest) < 0.01 {
			if tel.BatteryPercent >= 1.0 {
				t.Error("battery should drain while driving")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("vehicle never reached destination, at %f, %f", tel.Latitude, tel.Longitude)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestDriveSimSetBattery(t *testing.T) {
	d := NewDriveSim(simConfig(45), simVehicle)
	defer d.Close()

	d.SetBattery(0.42)
	tel, _ := d.GetTelemetry(context.Background())
	if tel.BatteryPercent != 0.42 {
		t.Errorf("BatteryPercent = %f, want 0.42", tel.BatteryPercent)
	}
}
