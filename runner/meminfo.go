// Copyright 2017, Kerby Shedden and the Muscato contributors.

package runner

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// errNoAvailable means a meminfo listing has no MemAvailable line
// (kernels before 3.14).
var errNoAvailable = errors.New("meminfo has no MemAvailable")

// usedFromMeminfo returns the percentage of memory in use from a
// /proc/meminfo listing.  Page cache and reclaimable memory count as
// free, as they do in MemAvailable.
func usedFromMeminfo(r io.Reader) (float64, error) {

	var total, avail float64
	var haveTotal, haveAvail bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		toks := strings.Fields(scanner.Text())
		if len(toks) < 2 {
			continue
		}
		var dst *float64
		switch toks[0] {
		case "MemTotal:":
			dst, haveTotal = &total, true
		case "MemAvailable:":
			dst, haveAvail = &avail, true
		default:
			continue
		}
		x, err := strconv.ParseFloat(toks[1], 64)
		if err != nil {
			return 0, errors.Wrapf(err, "meminfo %s", toks[0])
		}
		*dst = x
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	if !haveTotal || total == 0 {
		return 0, errors.New("meminfo has no MemTotal")
	}
	if !haveAvail {
		return 0, errNoAvailable
	}
	if avail > total {
		avail = total
	}

	return 100 * (total - avail) / total, nil
}
