package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"roadtripgo/pkg/config"
	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

const tickRateMs = 100

// DriveSim is a Source that drives the vehicle along a route at constant
// speed, draining the battery by the vehicle's consumption model. It exists
// so the whole pipeline can run without a real GPS or CAN feed.
type DriveSim struct {
	mu  sync.Mutex
	tel Telemetry

	vehicle  model.Vehicle
	speedMph float64

	route     []geo.Point
	targetIdx int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDriveSim creates a simulator parked at the configured start position.
func NewDriveSim(cfg config.DriveSimConfig, vehicle model.Vehicle) *DriveSim {
	d := &DriveSim{
		vehicle:  vehicle,
		speedMph: cfg.SpeedMph,
		stopCh:   make(chan struct{}),
		tel: Telemetry{
			Latitude:       cfg.StartLat,
			Longitude:      cfg.StartLon,
			TemperatureF:   cfg.TemperatureF,
			BatteryPercent: 1.0,
			Timestamp:      time.Now(),
		},
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// SetRoute replaces the route. The vehicle heads for the first point.
func (d *DriveSim) SetRoute(route []geo.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.route = route
	d.targetIdx = 0
}

// SetBattery overrides the battery level, for scenario setup.
func (d *DriveSim) SetBattery(pct float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tel.BatteryPercent = pct
}

// GetTelemetry returns the current state of the vehicle.
func (d *DriveSim) GetTelemetry(_ context.Context) (Telemetry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tel, nil
}

// Close stops the physics loop.
func (d *DriveSim) Close() error {
	close(d.stopCh)
	d.wg.Wait()
	return nil
}

func (d *DriveSim) run() {
	defer d.wg.Done()
	ticker := time.NewTicker(tickRateMs * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-d.stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			d.step(dt)
		}
	}
}

// step advances the vehicle along the route by one tick.
func (d *DriveSim) step(dt time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tel.Timestamp = time.Now()

	if d.targetIdx >= len(d.route) {
		d.tel.SpeedMph = 0
		return
	}

	pos := geo.Point{Lat: d.tel.Latitude, Lon: d.tel.Longitude}
	target := d.route[d.targetIdx]

	stepMiles := d.speedMph * dt.Hours()
	remaining := geo.DistanceMiles(pos, target)

	if remaining <= stepMiles {
		// Arrived at this route point; aim for the next one.
		d.tel.Latitude = target.Lat
		d.tel.Longitude = target.Lon
		d.targetIdx++
		if d.targetIdx >= len(d.route) {
			slog.Info("DriveSim: Route complete")
			d.tel.SpeedMph = 0
		}
	} else {
		bearing := geo.Bearing(pos, target)
		next := geo.PointAt(pos, stepMiles, bearing)
		d.tel.Latitude = next.Lat
		d.tel.Longitude = next.Lon
		d.tel.Heading = bearing
		d.tel.SpeedMph = d.speedMph
	}

	// Battery drain follows the vehicle's consumption model.
	if d.vehicle.BatteryCapacityKWh > 0 {
		usedKWh := stepMiles * d.vehicle.ConsumptionKWhPerMile
		d.tel.BatteryPercent -= usedKWh / d.vehicle.BatteryCapacityKWh
		if d.tel.BatteryPercent < 0 {
			d.tel.BatteryPercent = 0
		}
	}
}
