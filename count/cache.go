// Copyright 2017, Kerby Shedden and the Muscato contributors.

package count

// FailedCache remembers windows for which a mismatch search found no
// unique guide, so that repeats within one file are not searched
// again.
type FailedCache interface {
	Has(w []byte) bool
	Add(w []byte)
	Len() int
}

type failedSet map[string]struct{}

func (f failedSet) Has(w []byte) bool {
	_, ok := f[string(w)]
	return ok
}

func (f failedSet) Add(w []byte) {
	f[string(w)] = struct{}{}
}

func (f failedSet) Len() int {
	return len(f)
}

// noCache is used in low-memory mode; every window is searched.
type noCache struct{}

func (noCache) Has([]byte) bool { return false }
func (noCache) Add([]byte)      {}
func (noCache) Len() int        { return 0 }

// NewFailedCache returns the cache for one file scan.  It is a no-op
// when lowmem is set or when mismatches are not allowed.
func NewFailedCache(lowmem bool, mismatches int) FailedCache {
	if lowmem || mismatches == 0 {
		return noCache{}
	}
	return make(failedSet)
}
