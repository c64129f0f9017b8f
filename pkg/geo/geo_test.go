package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 37.7749, Lon: -122.4194},
			p2:   Point{Lat: 37.7749, Lon: -122.4194},
			want: 0,
		},
		{
			name: "SF to LA",
			p1:   Point{Lat: 37.7749, Lon: -122.4194},
			p2:   Point{Lat: 34.0522, Lon: -118.2437},
			want: 347, // Approx 347mi great circle
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 69.17, // Approx 69mi
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.p1, tt.p2)
			// Allow 1% margin of error due to float precision/earth radius var
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("DistanceMiles() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestMidpoint(t *testing.T) {
	p1 := Point{Lat: 0, Lon: 0}
	p2 := Point{Lat: 0, Lon: 2}
	mid := Midpoint(p1, p2)

	if math.Abs(mid.Lat) > 0.01 || math.Abs(mid.Lon-1) > 0.01 {
		t.Errorf("Midpoint() = %+v, want approx {0 1}", mid)
	}

	// Midpoint is equidistant from both endpoints
	d1 := DistanceMiles(p1, mid)
	d2 := DistanceMiles(p2, mid)
	if math.Abs(d1-d2) > d1*0.001 {
		t.Errorf("midpoint not equidistant: %v vs %v", d1, d2)
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{name: "Due North", p1: Point{Lat: 0, Lon: 0}, p2: Point{Lat: 1, Lon: 0}, want: 0},
		{name: "Due East", p1: Point{Lat: 0, Lon: 0}, p2: Point{Lat: 0, Lon: 1}, want: 90},
		{name: "Due South", p1: Point{Lat: 1, Lon: 0}, p2: Point{Lat: 0, Lon: 0}, want: 180},
		{name: "Due West", p1: Point{Lat: 0, Lon: 1}, p2: Point{Lat: 0, Lon: 0}, want: 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.p1, tt.p2)
			if math.Abs(NormalizeAngle(got-tt.want)) > 0.5 {
				t.Errorf("Bearing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointAt(t *testing.T) {
	start := Point{Lat: 40.0, Lon: -105.0}
	dest := PointAt(start, 10, 90)

	got := DistanceMiles(start, dest)
	if math.Abs(got-10) > 0.1 {
		t.Errorf("PointAt distance = %v, want 10", got)
	}
	if dest.Lon <= start.Lon {
		t.Errorf("expected eastward movement, got %+v", dest)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{190, -170},
		{-190, 170},
		{360, 0},
		{-360, 0},
		{540, 180},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
