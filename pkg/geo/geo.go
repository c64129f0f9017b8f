package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const metersPerMile = 1609.344

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func fromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

// DistanceMiles calculates the Haversine distance between two points in miles.
func DistanceMiles(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(p1.orb(), p2.orb()) / metersPerMile
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in
// degrees [0, 360).
func Bearing(p1, p2 Point) float64 {
	return math.Mod(orbgeo.Bearing(p1.orb(), p2.orb())+360.0, 360.0)
}

// Midpoint returns the geographic midpoint of the segment p1-p2.
func Midpoint(p1, p2 Point) Point {
	return fromOrb(orbgeo.Midpoint(p1.orb(), p2.orb()))
}

// PointAt returns the point reached by travelling distMiles from start on the
// given bearing (degrees).
func PointAt(start Point, distMiles, bearing float64) Point {
	return fromOrb(orbgeo.PointAtBearingAndDistance(start.orb(), bearing, distMiles*metersPerMile))
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}
