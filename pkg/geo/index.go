package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

// Index is an rtree over geometries keyed by integer ids. Ids are chosen by
// the caller, usually row indices, and the index may be updated in place as
// rows are split or replaced.
type Index struct {
	tr    rtree.RTreeG[int]
	geoms map[int]orb.Geometry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{geoms: make(map[int]orb.Geometry)}
}

// NewPointIndex indexes pts by slice position. Empty points are skipped.
func NewPointIndex(pts []orb.Point) *Index {
	ix := NewIndex()
	for i, p := range pts {
		ix.Insert(i, p)
	}
	return ix
}

// NewLineIndex indexes lines by slice position.
func NewLineIndex(lines []orb.LineString) *Index {
	ix := NewIndex()
	for i, ls := range lines {
		ix.Insert(i, ls)
	}
	return ix
}

// NewGeometryIndex indexes arbitrary geometries by slice position.
func NewGeometryIndex(geoms []orb.Geometry) *Index {
	ix := NewIndex()
	for i, g := range geoms {
		ix.Insert(i, g)
	}
	return ix
}

// Insert adds g under id, replacing any geometry already stored for id.
// Empty geometries are not indexed.
func (ix *Index) Insert(id int, g orb.Geometry) {
	ix.Delete(id)
	if IsEmpty(g) {
		return
	}
	b := g.Bound()
	ix.tr.Insert(b.Min, b.Max, id)
	ix.geoms[id] = g
}

// Delete removes id from the index. Unknown ids are ignored.
func (ix *Index) Delete(id int) {
	g, ok := ix.geoms[id]
	if !ok {
		return
	}
	b := g.Bound()
	ix.tr.Delete(b.Min, b.Max, id)
	delete(ix.geoms, id)
}

// Len returns the number of indexed geometries.
func (ix *Index) Len() int { return len(ix.geoms) }

// Nearest returns the id of the geometry closest to p and its distance.
// Distances are planar in coordinate units, or meters over lon/lat
// coordinates when geographic is set. Ties go to the smallest id. ok is
// false when the index is empty or p is empty.
func (ix *Index) Nearest(p orb.Point, geographic bool) (id int, dist float64, ok bool) {
	if len(ix.geoms) == 0 || IsEmptyPoint(p) {
		return -1, math.Inf(1), false
	}

	var measure func(min, max [2]float64, id int, item bool) float64
	if geographic {
		measure = func(min, max [2]float64, id int, item bool) float64 {
			if item {
				return metricDistance(ix.geoms[id], p)
			}
			return boxDistMeters(orb.Bound{Min: min, Max: max}, p)
		}
	} else {
		measure = rtree.BoxDist[float64, int](p, p, func(_, _ [2]float64, id int) float64 {
			d := planar.DistanceFrom(ix.geoms[id], p)
			return d * d
		})
	}

	best, bestD := -1, math.Inf(1)
	ix.tr.Nearby(measure, func(_, _ [2]float64, id int, d float64) bool {
		if d > bestD {
			return false
		}
		if d < bestD || id < best {
			best, bestD = id, d
		}
		return true
	})
	if !geographic {
		bestD = math.Sqrt(bestD)
	}
	return best, bestD, true
}

// metricDistance returns the distance in meters from p to a lon/lat
// geometry. Areal geometries are measured to their outline.
func metricDistance(g orb.Geometry, p orb.Point) float64 {
	switch g := g.(type) {
	case orb.Point:
		return Haversine(g, p)
	case orb.MultiPoint:
		d := math.Inf(1)
		for _, q := range g {
			d = min(d, Haversine(q, p))
		}
		return d
	case orb.LineString:
		return Project(g, p, true).Dist
	case orb.MultiLineString:
		d := math.Inf(1)
		for _, ls := range g {
			d = min(d, Project(ls, p, true).Dist)
		}
		return d
	case orb.Ring:
		return Project(orb.LineString(g), p, true).Dist
	case orb.Polygon:
		d := math.Inf(1)
		for _, r := range g {
			d = min(d, Project(orb.LineString(r), p, true).Dist)
		}
		return d
	case orb.MultiPolygon:
		d := math.Inf(1)
		for _, poly := range g {
			d = min(d, metricDistance(poly, p))
		}
		return d
	case orb.Collection:
		d := math.Inf(1)
		for _, c := range g {
			d = min(d, metricDistance(c, p))
		}
		return d
	}
	return boxDistMeters(g.Bound(), p)
}

// boxDistMeters is a lower bound on the haversine distance from p to any
// point of b. It feeds the haversine formula with the smallest latitude and
// longitude gaps and the smallest cosine over the latitudes involved.
func boxDistMeters(b orb.Bound, p orb.Point) float64 {
	hav := func(deg float64) float64 {
		s := math.Sin(deg * math.Pi / 360)
		return s * s
	}

	dLat := max(b.Min[1]-p[1], p[1]-b.Max[1], 0)
	// hav peaks at 180 degrees, so over a longitude range it is smallest at
	// one of the two ends.
	near := max(b.Min[0]-p[0], p[0]-b.Max[0], 0)
	far := max(math.Abs(p[0]-b.Min[0]), math.Abs(p[0]-b.Max[0]))
	hLon := min(hav(near), hav(far))

	lo, hi := max(min(b.Min[1], p[1]), -90), min(max(b.Max[1], p[1]), 90)
	c := max(min(math.Cos(lo*math.Pi/180), math.Cos(hi*math.Pi/180)), 0)

	h := min(hav(dLat)+c*c*hLon, 1)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Search calls fn for every id whose bounding box intersects b, stopping when
// fn returns false. The visiting order is unspecified.
func (ix *Index) Search(b orb.Bound, fn func(id int) bool) {
	ix.tr.Search(b.Min, b.Max, func(_, _ [2]float64, id int) bool {
		return fn(id)
	})
}

// Candidates returns the ids whose bounding boxes intersect b, ascending.
func (ix *Index) Candidates(b orb.Bound) []int {
	var ids []int
	ix.Search(b, func(id int) bool {
		ids = append(ids, id)
		return true
	})
	sort.Ints(ids)
	return ids
}

// NearestFeature returns, for each query point, the index of the nearest
// target point, measured in meters when geographic. Empty query points map
// to -1.
func NearestFeature(query, targets []orb.Point, geographic bool) []int {
	ix := NewPointIndex(targets)
	out := make([]int, len(query))
	for i, q := range query {
		id, _, ok := ix.Nearest(q, geographic)
		if !ok {
			id = -1
		}
		out[i] = id
	}
	return out
}
