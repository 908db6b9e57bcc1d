package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/lineintersector"
	"github.com/twpayne/go-geom/xy/location"
)

// Predicate is a binary spatial relation between two geometries.
type Predicate int

const (
	Intersects Predicate = iota
	Disjoint
	Touches
	Crosses
	Within
	Contains
	Covers
	CoveredBy
	Equals
)

var predicateNames = [...]string{
	Intersects: "intersects",
	Disjoint:   "disjoint",
	Touches:    "touches",
	Crosses:    "crosses",
	Within:     "within",
	Contains:   "contains",
	Covers:     "covers",
	CoveredBy:  "covered_by",
	Equals:     "equals",
}

func (p Predicate) String() string {
	if p < 0 || int(p) >= len(predicateNames) {
		return fmt.Sprintf("Predicate(%d)", int(p))
	}
	return predicateNames[p]
}

// ParsePredicate parses a predicate name such as "intersects" or
// "covered_by".
func ParsePredicate(s string) (Predicate, error) {
	for i, name := range predicateNames {
		if name == s {
			return Predicate(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spatial predicate %q", s)
}

// NeedsOverlap reports whether p can only hold for geometries whose bounds
// intersect, which lets callers prune candidates through an index.
func (p Predicate) NeedsOverlap() bool {
	return p != Disjoint
}

// Eval reports whether p(a, b) holds. Empty geometries are disjoint from
// everything.
func Eval(p Predicate, a, b orb.Geometry) bool {
	pa, pb := decompose(a), decompose(b)
	if pa.empty() || pb.empty() {
		return p == Disjoint
	}
	r := relate(pa, pb)

	switch p {
	case Intersects:
		return r.intersects
	case Disjoint:
		return !r.intersects
	case Touches:
		return r.intersects && !r.interiors
	case Crosses:
		da, db := pa.dim(), pb.dim()
		switch {
		case da < db:
			return r.interiors && r.aOutside
		case da > db:
			return r.interiors && r.bOutside
		case da == 1 && db == 1:
			return r.interiors && !r.overlap
		}
		return false
	case Within:
		return r.interiors && r.covered(false)
	case Contains:
		return r.interiors && r.covered(true)
	case Covers:
		return r.covered(true)
	case CoveredBy:
		return r.covered(false)
	case Equals:
		return r.covered(true) && r.covered(false)
	}
	return false
}

// parts is a geometry decomposed into its points, lines and polygons.
type parts struct {
	points []orb.Point
	lines  []orb.LineString
	polys  []orb.Polygon
}

func decompose(g orb.Geometry) parts {
	var p parts
	p.add(g)
	return p
}

func (p *parts) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		if !IsEmptyPoint(g) {
			p.points = append(p.points, g)
		}
	case orb.MultiPoint:
		for _, pt := range g {
			p.add(pt)
		}
	case orb.LineString:
		switch len(g) {
		case 0:
		case 1:
			p.points = append(p.points, g[0])
		default:
			p.lines = append(p.lines, g)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			p.add(ls)
		}
	case orb.Ring:
		p.add(orb.Polygon{g})
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) >= 3 {
			poly := make(orb.Polygon, len(g))
			for i, r := range g {
				poly[i] = closeRing(r)
			}
			p.polys = append(p.polys, poly)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			p.add(poly)
		}
	case orb.Bound:
		if !IsEmpty(g) {
			p.add(g.ToPolygon())
		}
	case orb.Collection:
		for _, c := range g {
			p.add(c)
		}
	}
}

func (p parts) empty() bool {
	return len(p.points) == 0 && len(p.lines) == 0 && len(p.polys) == 0
}

func (p parts) dim() int {
	switch {
	case len(p.polys) > 0:
		return 2
	case len(p.lines) > 0:
		return 1
	case len(p.points) > 0:
		return 0
	}
	return -1
}

// cutLine is a line or polygon ring used to cut another geometry's linework.
type cutLine struct {
	ls   orb.LineString
	ring bool
}

// linework returns the lines and polygon rings of p.
func (p parts) linework() []cutLine {
	out := make([]cutLine, 0, len(p.lines))
	for _, ls := range p.lines {
		out = append(out, cutLine{ls: ls})
	}
	for _, poly := range p.polys {
		for _, r := range poly {
			out = append(out, cutLine{ls: orb.LineString(r), ring: true})
		}
	}
	return out
}

// hitAt returns the location, relative to c's own geometry, of point x found
// on segment j of c.
func (c cutLine) hitAt(j int, x orb.Point) location.Type {
	if c.ring {
		return location.Boundary
	}
	n := len(c.ls)
	if c.ls[0] == c.ls[n-1] {
		return location.Interior
	}
	u := param(c.ls[j], c.ls[j+1], x)
	if (j == 0 && u <= snapEps) || (j == n-2 && u >= 1-snapEps) {
		return location.Boundary
	}
	return location.Interior
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		return append(append(orb.Ring{}, r...), r[0])
	}
	return r
}

// relation summarises how two geometries meet.
type relation struct {
	intersects bool
	interiors  bool // the interiors share a point
	overlap    bool // line interiors share a segment
	aOutside   bool // some of a lies in the exterior of b
	bOutside   bool
	aRingInB   bool // a polygon boundary of a enters the interior of polygonal b
	bRingInA   bool
	polygonal  bool // both geometries have area
}

// covered reports whether b is covered by a, or a by b when fromA is false.
func (r relation) covered(fromA bool) bool {
	if fromA {
		return !r.bOutside && !(r.polygonal && r.aRingInB)
	}
	return !r.aOutside && !(r.polygonal && r.bRingInA)
}

func relate(a, b parts) relation {
	r := relation{polygonal: a.dim() == 2 && b.dim() == 2}
	ra := classify(samples(a, b.linework()), b)
	rb := classify(samples(b, a.linework()), a)

	r.intersects = ra.touched || rb.touched
	r.interiors = ra.interiors || rb.interiors
	r.overlap = ra.overlap || rb.overlap
	r.aOutside = ra.outside
	r.bOutside = rb.outside
	r.aRingInB = ra.ringInside
	r.bRingInA = rb.ringInside
	return r
}

type sampleKind int

const (
	interiorSample sampleKind = iota // interior of its own geometry
	endpointSample                   // boundary of a line
	ringSample                       // boundary of a polygon
)

type sample struct {
	p    orb.Point
	kind sampleKind
	mid  bool // midpoint of a line sub-segment
	// hit is the known location of a cut point on the geometry that cut it,
	// location.None otherwise. Cut points carry rounding error, so locate
	// alone may miss them.
	hit location.Type
}

type classified struct {
	touched, interiors, overlap, outside, ringInside bool
}

func classify(ss []sample, other parts) classified {
	var c classified
	for _, s := range ss {
		loc := locate(s.p, other)
		if s.hit < loc {
			loc = s.hit
		}
		if loc == location.Exterior {
			c.outside = true
			continue
		}
		c.touched = true
		if loc != location.Interior {
			continue
		}
		switch s.kind {
		case interiorSample:
			c.interiors = true
			if s.mid && other.dim() == 1 {
				c.overlap = true
			}
		case ringSample:
			if other.dim() == 2 {
				c.ringInside = true
			}
		}
	}
	return c
}

// samples returns representative points of g: every vertex, every point where
// g's linework is cut by cut, the midpoint of every resulting sub-segment and,
// for polygons, points just inside each boundary sub-segment. Between two
// consecutive cut points a sub-segment has a single location relative to the
// geometry that produced cut, so its midpoint stands for all of it.
func samples(g parts, cut []cutLine) []sample {
	var out []sample
	for _, p := range g.points {
		out = append(out, sample{p: p, kind: interiorSample, hit: location.None})
	}
	for _, ls := range g.lines {
		start := len(out)
		for i := 0; i < len(ls)-1; i++ {
			out = appendSegment(out, ls[i], ls[i+1], cut, interiorSample, nil, i == 0)
		}
		if ls[0] != ls[len(ls)-1] {
			markEndpoints(out[start:], ls[0], ls[len(ls)-1])
		}
	}
	for _, poly := range g.polys {
		for _, r := range poly {
			for i := 0; i < len(r)-1; i++ {
				out = appendSegment(out, r[i], r[i+1], cut, ringSample, poly, i == 0)
			}
		}
	}
	return out
}

// markEndpoints flags the vertex samples at a line's two ends as boundary.
func markEndpoints(ss []sample, first, last orb.Point) {
	for i := range ss {
		if !ss[i].mid && (ss[i].p == first || ss[i].p == last) {
			ss[i].kind = endpointSample
		}
	}
}

// appendSegment samples the segment s0-s1. The end vertex s1 is always
// included; the start vertex only for the first segment of a line or ring.
func appendSegment(out []sample, s0, s1 orb.Point, cut []cutLine, kind sampleKind, poly orb.Polygon, first bool) []sample {
	type cutAt struct {
		t   float64
		hit location.Type
	}
	cuts := []cutAt{{0, location.None}, {1, location.None}}
	for _, c := range cut {
		for j := 0; j < len(c.ls)-1; j++ {
			res := lineintersector.LineIntersectsLine(robust, coord(s0), coord(s1), coord(c.ls[j]), coord(c.ls[j+1]))
			if !res.HasIntersection() {
				continue
			}
			for _, x := range res.Intersection() {
				pt := orb.Point{x[0], x[1]}
				if t := param(s0, s1, pt); t > 0 && t < 1 {
					cuts = append(cuts, cutAt{t, c.hitAt(j, pt)})
				}
			}
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].t < cuts[j].t })

	uniq := cuts[:1]
	for _, c := range cuts[1:] {
		last := &uniq[len(uniq)-1]
		if c.t-last.t <= snapEps {
			last.hit = min(last.hit, c.hit)
			continue
		}
		uniq = append(uniq, c)
	}

	if first {
		out = append(out, sample{p: s0, kind: kind, hit: location.None})
	}
	for i := 1; i < len(uniq); i++ {
		m := lerp(s0, s1, (uniq[i-1].t+uniq[i].t)/2)
		out = append(out, sample{p: m, kind: kind, mid: true, hit: location.None})
		if poly != nil {
			out = appendInside(out, s0, s1, m, poly)
		}
		if uniq[i].t < 1 {
			out = append(out, sample{p: lerp(s0, s1, uniq[i].t), kind: kind, hit: uniq[i].hit})
		}
	}
	return append(out, sample{p: s1, kind: kind, hit: location.None})
}

// appendInside adds a point just off m, on whichever side of the boundary
// segment s0-s1 lies inside poly.
func appendInside(out []sample, s0, s1, m orb.Point, poly orb.Polygon) []sample {
	dx, dy := s1[0]-s0[0], s1[1]-s0[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return out
	}
	eps := 1e-7 * l
	for _, sign := range [2]float64{1, -1} {
		q := orb.Point{m[0] - sign*dy/l*eps, m[1] + sign*dx/l*eps}
		if locatePolygon(q, poly) == location.Interior {
			return append(out, sample{p: q, kind: interiorSample, hit: location.None})
		}
	}
	return out
}

var robust = lineintersector.RobustLineIntersector{}

// snapEps is the parametric distance under which two cut points coincide.
const snapEps = 1e-12

func coord(p orb.Point) geom.Coord { return geom.Coord{p[0], p[1]} }

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// param returns the position of p along a-b, as a fraction of its length.
func param(a, b, p orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0
	}
	return ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
}

// locate returns the location of p relative to g: interior if p is in the
// interior of any part, boundary if it is only on some part's boundary.
func locate(p orb.Point, g parts) location.Type {
	loc := location.Exterior
	for _, q := range g.points {
		if q == p {
			return location.Interior
		}
	}
	for _, ls := range g.lines {
		switch locateLine(p, ls) {
		case location.Interior:
			return location.Interior
		case location.Boundary:
			loc = location.Boundary
		}
	}
	for _, poly := range g.polys {
		switch locatePolygon(p, poly) {
		case location.Interior:
			return location.Interior
		case location.Boundary:
			loc = location.Boundary
		}
	}
	return loc
}

func locateLine(p orb.Point, ls orb.LineString) location.Type {
	if !xy.IsOnLine(geom.XY, coord(p), flat(ls)) {
		return location.Exterior
	}
	if ls[0] != ls[len(ls)-1] && (p == ls[0] || p == ls[len(ls)-1]) {
		return location.Boundary
	}
	return location.Interior
}

func locatePolygon(p orb.Point, poly orb.Polygon) location.Type {
	switch xy.LocatePointInRing(geom.XY, coord(p), flat(poly[0])) {
	case location.Exterior:
		return location.Exterior
	case location.Boundary:
		return location.Boundary
	}
	for _, hole := range poly[1:] {
		switch xy.LocatePointInRing(geom.XY, coord(p), flat(hole)) {
		case location.Boundary:
			return location.Boundary
		case location.Interior:
			return location.Exterior
		}
	}
	return location.Interior
}

func flat[T ~[]orb.Point](pts T) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p[0], p[1])
	}
	return out
}
