// Copyright 2017, Kerby Shedden and the Muscato contributors.

package guides

// within reports whether x and y differ at no more than maxmm
// positions.  The two slices must have equal length.  Counting stops
// as soon as the budget is exceeded.
func within(x, y []byte, maxmm int) bool {
	var c int
	for i, v := range x {
		if v != y[i] {
			c++
			if c > maxmm {
				return false
			}
		}
	}
	return true
}

// Search looks for the single guide within maxmm substitutions of w.
// Only guides of the same length as w are considered.  If two or more
// guides are within the budget the window is ambiguous and no guide
// is returned, even when one of them is closer than the others.
func (reg *Registry) Search(w []byte, maxmm int) (int, bool) {

	found := -1
	for i, g := range reg.seqs {
		if len(g) != len(w) {
			continue
		}
		if !within(g, w, maxmm) {
			continue
		}
		if found >= 0 {
			return -1, false
		}
		found = i
	}

	return found, found >= 0
}
