package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		a, b             orb.Point
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name:             "Singapore CBD to Changi Airport",
			a:                orb.Point{103.8513, 1.2830},
			b:                orb.Point{103.9915, 1.3644},
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name: "Same point",
			a:    orb.Point{103.8198, 1.3521},
			b:    orb.Point{103.8198, 1.3521},
		},
		{
			name:             "London to Paris",
			a:                orb.Point{-0.1278, 51.5074},
			b:                orb.Point{2.3522, 48.8566},
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name:             "Short distance (~100m)",
			a:                orb.Point{103.8198, 1.3521},
			b:                orb.Point{103.8198, 1.3530},
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestLength(t *testing.T) {
	ls := orb.LineString{{0, 0}, {3, 0}, {3, 4}}
	if got := Length(ls, false); got != 7 {
		t.Errorf("planar Length = %f, want 7", got)
	}

	geoLine := orb.LineString{{103.8198, 1.3521}, {103.8198, 1.3530}, {103.8198, 1.3539}}
	want := Haversine(geoLine[0], geoLine[1]) + Haversine(geoLine[1], geoLine[2])
	if got := Length(geoLine, true); math.Abs(got-want) > 1e-9 {
		t.Errorf("geographic Length = %f, want %f", got, want)
	}

	if got := Length(nil, true); got != 0 {
		t.Errorf("Length(nil) = %f, want 0", got)
	}
}

func TestDistance(t *testing.T) {
	if got := Distance(orb.Point{0, 0}, orb.Point{3, 4}, false); got != 5 {
		t.Errorf("planar Distance = %f, want 5", got)
	}
	a, b := orb.Point{-0.1278, 51.5074}, orb.Point{2.3522, 48.8566}
	if got := Distance(a, b, true); got != Haversine(a, b) {
		t.Errorf("geographic Distance = %f, want haversine %f", got, Haversine(a, b))
	}
}

func BenchmarkHaversine(b *testing.B) {
	p, q := orb.Point{103.8198, 1.3521}, orb.Point{103.8520, 1.2905}
	for b.Loop() {
		Haversine(p, q)
	}
}
