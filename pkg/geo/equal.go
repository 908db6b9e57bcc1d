package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Equal reports whether a and b lie within tol of each other on both axes.
// A tol of zero demands exact equality.
func Equal(a, b orb.Point, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

// IsEmptyPoint reports whether p is the empty point, encoded as a NaN
// coordinate.
func IsEmptyPoint(p orb.Point) bool {
	return math.IsNaN(p[0]) || math.IsNaN(p[1])
}

// EmptyPoint returns the empty point marker.
func EmptyPoint() orb.Point {
	return orb.Point{math.NaN(), math.NaN()}
}

// IsEmpty reports whether g holds no coordinates.
func IsEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.Point:
		return IsEmptyPoint(g)
	case orb.MultiPoint:
		for _, p := range g {
			if !IsEmptyPoint(p) {
				return false
			}
		}
		return true
	case orb.LineString:
		return len(g) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > 0 {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !IsEmpty(c) {
				return false
			}
		}
		return true
	case orb.Bound:
		return g.Min[0] > g.Max[0] || g.Min[1] > g.Max[1]
	}
	return false
}
