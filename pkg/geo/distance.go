// Package geo adapts the orb geometry library to the operations the network
// engines need: distances and lengths, point-on-line projection, splitting,
// equality, cropping, binary predicates and an rtree-backed nearest index.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const earthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two lon/lat
// points.
func Haversine(a, b orb.Point) float64 {
	lat1r := a.Lat() * math.Pi / 180
	lat2r := b.Lat() * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Distance returns the distance between a and b: haversine meters when
// geographic, euclidean coordinate units otherwise.
func Distance(a, b orb.Point, geographic bool) float64 {
	if geographic {
		return Haversine(a, b)
	}
	return planar.Distance(a, b)
}

// Length returns the length of a linestring, in meters when geographic.
func Length(ls orb.LineString, geographic bool) float64 {
	if !geographic {
		return planar.Length(ls)
	}
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Haversine(ls[i-1], ls[i])
	}
	return total
}
