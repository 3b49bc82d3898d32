// Copyright 2017, Kerby Shedden and the Muscato contributors.

package runner

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// A host that has streamed several GB of reads: most of the memory
// not free is page cache.
const busyCache = `MemTotal:       16000000 kB
MemFree:          400000 kB
MemAvailable:   14400000 kB
Buffers:          100000 kB
Cached:          13600000 kB
SwapCached:            0 kB
Active:          9000000 kB
`

func TestUsedFromMeminfo(t *testing.T) {

	u, err := usedFromMeminfo(strings.NewReader(busyCache))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(u-10) > 1e-9 {
		t.Errorf("got %.2f%% used, want 10%%", u)
	}

	// Page cache alone stays well below the default limit.
	if u >= 98 {
		t.Errorf("page cache counted as used memory")
	}

	_, err = usedFromMeminfo(strings.NewReader("MemTotal: 1000 kB\nMemFree: 10 kB\n"))
	if !errors.Is(err, errNoAvailable) {
		t.Errorf("no MemAvailable: got %v", err)
	}

	for _, bad := range []string{
		"",
		"MemAvailable: 10 kB\n",
		"MemTotal: many kB\nMemAvailable: 10 kB\n",
	} {
		if _, err := usedFromMeminfo(strings.NewReader(bad)); err == nil {
			t.Errorf("no error for %q", bad)
		}
	}
}

func TestMemoryUsed(t *testing.T) {
	u, err := MemoryUsed()
	if err != nil {
		t.Fatal(err)
	}
	if u < 0 || u > 100 {
		t.Errorf("MemoryUsed = %f", u)
	}
}
