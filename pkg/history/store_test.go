package history

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"roadtripgo/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id string, miles float64, pois int) *model.HistoryEntry {
	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &model.HistoryEntry{
		ID:          id,
		TourName:    "Front Range Loop",
		StartedAt:   started,
		EndedAt:     started.Add(2 * time.Hour),
		Miles:       miles,
		Duration:    2 * time.Hour,
		POIsVisited: pois,
		POINames:    []string{"Red Rocks Amphitheatre", "Flatirons"},
		Route: []model.Coordinate{
			{Lat: 40.0150, Lon: -105.2705},
			{Lat: 39.6654, Lon: -105.2057},
		},
	}
}

func TestSaveAndGetTour(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := entry("run-1", 58.2, 2)
	if err := s.SaveTour(ctx, want); err != nil {
		t.Fatalf("SaveTour: %v", err)
	}

	got, err := s.GetTour(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetTour: %v", err)
	}
	if got == nil {
		t.Fatal("GetTour returned nil")
	}
	if got.TourName != want.TourName || got.Miles != want.Miles || got.POIsVisited != want.POIsVisited {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Duration != 2*time.Hour {
		t.Errorf("Duration = %v", got.Duration)
	}
	if len(got.POINames) != 2 || got.POINames[0] != "Red Rocks Amphitheatre" {
		t.Errorf("POINames = %v", got.POINames)
	}
	if len(got.Route) != 2 || got.Route[0].Lat != 40.0150 {
		t.Errorf("Route = %v", got.Route)
	}
}

func TestGetTourMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetTour(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetTour: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing tour, got %+v", got)
	}
}

func TestListToursNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := entry("run-old", 30, 1)
	older.StartedAt = older.StartedAt.Add(-48 * time.Hour)
	newer := entry("run-new", 60, 3)

	if err := s.SaveTour(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTour(ctx, newer); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListTours(ctx, 10)
	if err != nil {
		t.Fatalf("ListTours: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tours, want 2", len(got))
	}
	if got[0].ID != "run-new" || got[1].ID != "run-old" {
		t.Errorf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, miles := range []float64{10, 20, 60} {
		e := entry(string(rune('a'+i)), miles, i+1)
		e.StartedAt = e.StartedAt.Add(time.Duration(i) * time.Hour)
		if err := s.SaveTour(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalTours != 3 {
		t.Errorf("TotalTours = %d", stats.TotalTours)
	}
	if stats.TotalMiles != 90 {
		t.Errorf("TotalMiles = %f", stats.TotalMiles)
	}
	if math.Abs(stats.MeanMiles-30) > 1e-9 {
		t.Errorf("MeanMiles = %f, want 30", stats.MeanMiles)
	}
	if stats.MedianMiles != 20 {
		t.Errorf("MedianMiles = %f, want 20", stats.MedianMiles)
	}
	if stats.TotalPOIs != 6 {
		t.Errorf("TotalPOIs = %d, want 6", stats.TotalPOIs)
	}
	if math.Abs(stats.MeanPOIsPerTour-2) > 1e-9 {
		t.Errorf("MeanPOIsPerTour = %f, want 2", stats.MeanPOIsPerTour)
	}
	if stats.TotalDuration != 6*time.Hour {
		t.Errorf("TotalDuration = %v", stats.TotalDuration)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalTours != 0 || stats.MeanMiles != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
