package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// CropLine clips ls to b. The result holds one linestring per piece of ls
// inside b; it is empty when ls lies outside.
func CropLine(ls orb.LineString, b orb.Bound) orb.MultiLineString {
	out := clip.LineString(b, ls)
	pieces := out[:0]
	for _, piece := range out {
		if len(piece) >= 2 {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

// InBound reports whether p lies inside b, boundary included.
func InBound(b orb.Bound, p orb.Point) bool {
	return b.Contains(p)
}
