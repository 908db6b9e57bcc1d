package geo

import "github.com/paulmach/orb"

// lineEqual reports whether two linestrings have the same vertices within tol.
func lineEqual(a, b orb.LineString, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
