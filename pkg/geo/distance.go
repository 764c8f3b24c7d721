// Package geo computes great-circle distances between coordinates.
package geo

import "math"

// EarthRadiusKm is the IUGG mean Earth radius.
const EarthRadiusKm = 6371.0088

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite and within range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Unreachable is returned for any pair containing an invalid point.
// Every max-distance cutoff excludes it.
var Unreachable = math.Inf(1)

// Distance returns the haversine distance between a and b in kilometers,
// or Unreachable when either point is invalid.
func Distance(a, b Point) float64 {
	if !a.Valid() || !b.Valid() {
		return Unreachable
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceTo is Distance for an optional destination; nil is Unreachable.
func DistanceTo(from Point, to *Point) float64 {
	if to == nil {
		return Unreachable
	}
	return Distance(from, *to)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
