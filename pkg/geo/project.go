package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Projection is the location on a linestring closest to a query point.
type Projection struct {
	Point   orb.Point // closest location on the line
	Segment int       // index of the segment holding Point; -1 for an empty line
	Ratio   float64   // position along the segment, in [0, 1]
	Dist    float64   // distance from the query point, meters when geographic
}

// Project finds the point on ls closest to p. Geographic coordinates are
// handled in an equirectangular projection scaled at p's latitude, which is
// good enough for the short distances snapping deals with.
func Project(ls orb.LineString, p orb.Point, geographic bool) Projection {
	if len(ls) == 0 {
		return Projection{Segment: -1, Dist: math.Inf(1)}
	}
	if len(ls) == 1 {
		return Projection{Point: ls[0], Segment: 0, Dist: Distance(p, ls[0], geographic)}
	}

	scale := 1.0
	if geographic {
		scale = math.Cos(p.Lat() * math.Pi / 180)
	}

	best := Projection{Segment: -1}
	bestSq := math.Inf(1)
	for i := 0; i < len(ls)-1; i++ {
		q, t := closestOnSegment(ls[i], ls[i+1], p, scale)
		dx := (q[0] - p[0]) * scale
		dy := q[1] - p[1]
		if d := dx*dx + dy*dy; d < bestSq {
			bestSq = d
			best = Projection{Point: q, Segment: i, Ratio: t}
		}
	}
	best.Dist = Distance(p, best.Point, geographic)
	return best
}

// closestOnSegment projects p onto segment ab, with x coordinates scaled by
// scale, and returns the closest point and its ratio clamped to [0, 1].
func closestOnSegment(a, b, p orb.Point, scale float64) (orb.Point, float64) {
	// Degenerate segment: compare in original coordinates before scaling
	// introduces floating-point noise.
	if a == b {
		return a, 0
	}

	dx := (b[0] - a[0]) * scale
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((p[0]-a[0])*scale*dx + (p[1]-a[1])*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	switch t {
	case 0:
		return a, 0
	case 1:
		return b, 1
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}, t
}

// Split cuts ls at the projected location. The first part ends and the
// second part starts at the returned cut point. A projection within tol of
// an existing vertex cuts at that vertex, so no near-duplicate coordinates are
// introduced. Cutting at either end of ls yields a one-point part; callers
// treat endpoint hits separately.
func Split(ls orb.LineString, pr Projection, tol float64) (first, second orb.LineString, at orb.Point) {
	i := pr.Segment
	switch {
	case Equal(pr.Point, ls[i], tol):
		at = ls[i]
		first = append(orb.LineString{}, ls[:i+1]...)
		second = append(orb.LineString{}, ls[i:]...)
	case Equal(pr.Point, ls[i+1], tol):
		at = ls[i+1]
		first = append(orb.LineString{}, ls[:i+2]...)
		second = append(orb.LineString{}, ls[i+1:]...)
	default:
		at = pr.Point
		first = append(append(orb.LineString{}, ls[:i+1]...), at)
		second = append(orb.LineString{at}, ls[i+1:]...)
	}
	return first, second, at
}
