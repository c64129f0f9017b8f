package main

import (
	"os"
	"path/filepath"
	"testing"

	"roadtripgo/pkg/config"
	"roadtripgo/pkg/poi"
)

func TestVehicleFromConfig(t *testing.T) {
	v := vehicleFromConfig(config.VehicleConfig{
		Name:                  "Test EV",
		BatteryCapacityKWh:    62,
		ConsumptionKWhPerMile: 0.268,
		RatedRangeMiles:       231,
		ChargingPorts:         []string{"CCS"},
	})
	if v.Name != "Test EV" || v.BatteryCapacityKWh != 62 {
		t.Errorf("got %+v", v)
	}
	if len(v.ChargingPorts) != 1 || v.ChargingPorts[0] != "CCS" {
		t.Errorf("ports = %v", v.ChargingPorts)
	}
}

func TestLoadPOIs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pois.json")
	data := `[
		{"id": "p1", "name": "Museum", "lat": 40.0, "lon": -105.0, "category": "Landmark"},
		{"id": "c1", "name": "Supercharger", "lat": 40.1, "lon": -105.1, "category": "EVCharger"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := poi.NewManager()
	n, err := loadPOIs(mgr, path)
	if err != nil {
		t.Fatalf("loadPOIs: %v", err)
	}
	if n != 2 || mgr.Count() != 2 {
		t.Errorf("loaded %d, catalog %d, want 2", n, mgr.Count())
	}
	if got := mgr.Get("p1"); got == nil || got.Name != "Museum" {
		t.Errorf("p1 = %+v", got)
	}
}

func TestLoadPOIsMissingFile(t *testing.T) {
	if _, err := loadPOIs(poi.NewManager(), "does/not/exist.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPOIsBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPOIs(poi.NewManager(), path); err == nil {
		t.Error("expected parse error")
	}
}
