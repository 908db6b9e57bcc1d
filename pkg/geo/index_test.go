package geo

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
)

func TestIndexNearestPoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {10, 0}, {5, 5}, {EmptyPoint()[0], 0}}
	ix := NewPointIndex(pts)

	if ix.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (empty point skipped)", ix.Len())
	}

	tests := []struct {
		name     string
		q        orb.Point
		wantID   int
		wantDist float64
	}{
		{"exact hit", orb.Point{10, 0}, 1, 0},
		{"closest to origin", orb.Point{1, 1}, 0, math.Sqrt2},
		{"closest to centre", orb.Point{5, 4}, 2, 1},
		{"tie goes to smallest id", orb.Point{5, 0}, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, dist, ok := ix.Nearest(tt.q, false)
			if !ok {
				t.Fatal("Nearest returned !ok")
			}
			if id != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
			if math.Abs(dist-tt.wantDist) > 1e-12 {
				t.Errorf("dist = %f, want %f", dist, tt.wantDist)
			}
		})
	}
}

func TestIndexNearestLines(t *testing.T) {
	ix := NewLineIndex([]orb.LineString{
		{{0, 0}, {10, 0}},
		{{0, 5}, {10, 5}},
	})

	id, dist, _ := ix.Nearest(orb.Point{3, 1}, false)
	if id != 0 || dist != 1 {
		t.Errorf("got (%d, %f), want (0, 1)", id, dist)
	}

	ix.Insert(2, orb.LineString{{0, 3.5}, {10, 3.5}})
	id, _, _ = ix.Nearest(orb.Point{3, 4}, false)
	if id != 2 {
		t.Errorf("after insert: id = %d, want 2", id)
	}

	ix.Delete(2)
	id, _, _ = ix.Nearest(orb.Point{3, 4}, false)
	if id != 1 {
		t.Errorf("after delete: id = %d, want 1", id)
	}
}

func TestIndexInsertReplaces(t *testing.T) {
	ix := NewIndex()
	ix.Insert(7, orb.Point{0, 0})
	ix.Insert(7, orb.Point{100, 100})
	if ix.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ix.Len())
	}
	if got := ix.Candidates(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}); len(got) != 0 {
		t.Errorf("old bound still indexed: %v", got)
	}
}

func TestIndexEmpty(t *testing.T) {
	ix := NewIndex()
	if _, _, ok := ix.Nearest(orb.Point{0, 0}, false); ok {
		t.Error("Nearest on empty index returned ok")
	}
	ix.Insert(0, orb.Point{1, 1})
	if _, _, ok := ix.Nearest(EmptyPoint(), false); ok {
		t.Error("Nearest of empty point returned ok")
	}
}

func TestIndexCandidates(t *testing.T) {
	ix := NewGeometryIndex([]orb.Geometry{
		orb.Point{0, 0},
		orb.LineString{{2, 2}, {4, 4}},
		orb.Polygon{{{10, 10}, {12, 10}, {12, 12}, {10, 10}}},
		orb.Point{1, 1},
	})
	got := ix.Candidates(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{3, 3}})
	if want := []int{0, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestNearestFeature(t *testing.T) {
	got := NearestFeature(
		[]orb.Point{{0.1, 0}, EmptyPoint(), {9, 9}},
		[]orb.Point{{0, 0}, {10, 10}},
		false,
	)
	if want := []int{0, -1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("NearestFeature = %v, want %v", got, want)
	}
}

func TestNearestFeatureGeographic(t *testing.T) {
	// At 60N a degree of longitude is half a degree of latitude, so the node
	// east of the query is closer in meters but farther in degrees.
	targets := []orb.Point{{0.15, 60}, {0, 60.12}}
	query := []orb.Point{{0, 60}}

	if got := NearestFeature(query, targets, true); got[0] != 0 {
		t.Errorf("geographic NearestFeature = %v, want [0]", got)
	}
	if got := NearestFeature(query, targets, false); got[0] != 1 {
		t.Errorf("planar NearestFeature = %v, want [1]", got)
	}
}

func TestIndexNearestLinesGeographic(t *testing.T) {
	ix := NewLineIndex([]orb.LineString{
		{{0, 60.12}, {1, 60.12}},
		{{0.15, 59}, {0.15, 61}},
	})
	id, dist, ok := ix.Nearest(orb.Point{0, 60}, true)
	if !ok || id != 1 {
		t.Fatalf("Nearest = %d (ok %v), want 1", id, ok)
	}
	if want := Haversine(orb.Point{0, 60}, orb.Point{0.15, 60}); math.Abs(dist-want) > 1 {
		t.Errorf("dist = %f m, want ~%f m", dist, want)
	}
}

func TestBoxDistMetersIsLowerBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for range 500 {
		p := orb.Point{rng.Float64()*360 - 180, rng.Float64()*170 - 85}
		lon, lat := rng.Float64()*340-170, rng.Float64()*160-80
		b := orb.Bound{
			Min: orb.Point{lon, lat},
			Max: orb.Point{lon + rng.Float64()*10, lat + rng.Float64()*5},
		}
		lb := boxDistMeters(b, p)
		for range 20 {
			q := orb.Point{
				b.Min[0] + rng.Float64()*(b.Max[0]-b.Min[0]),
				b.Min[1] + rng.Float64()*(b.Max[1]-b.Min[1]),
			}
			if d := Haversine(p, q); lb > d+1e-6 {
				t.Fatalf("bound %f exceeds distance %f from %v to %v in %v", lb, d, p, q, b)
			}
		}
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
		want bool
	}{
		{"nil", nil, true},
		{"nan point", EmptyPoint(), true},
		{"point", orb.Point{0, 0}, false},
		{"empty line", orb.LineString{}, true},
		{"line", orb.LineString{{0, 0}, {1, 1}}, false},
		{"empty polygon", orb.Polygon{}, true},
		{"multipoint of empties", orb.MultiPoint{EmptyPoint()}, true},
		{"collection", orb.Collection{orb.LineString{}, orb.Point{1, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.g); got != tt.want {
				t.Errorf("IsEmpty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCropLine(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	got := CropLine(orb.LineString{{-1, 0.5}, {2, 0.5}}, b)
	if len(got) != 1 {
		t.Fatalf("got %d pieces, want 1", len(got))
	}
	if !lineEqual(got[0], orb.LineString{{0, 0.5}, {1, 0.5}}, 1e-12) {
		t.Errorf("piece = %v", got[0])
	}

	if out := CropLine(orb.LineString{{5, 5}, {6, 6}}, b); len(out) != 0 {
		t.Errorf("outside line cropped to %v", out)
	}
}
