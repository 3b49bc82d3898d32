// Copyright 2017, Kerby Shedden and the Muscato contributors.

package compile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
)

// Summary is the statistics line heading each per-file table.
type Summary struct {
	Name string

	// Elapsed is rounded to two decimals in Unit, "seconds" or
	// "minutes".
	Elapsed float64
	Unit    string

	Valid    int64
	Total    int64
	Exact    int64
	Mismatch int64
}

const summaryPrefix = "#script ran in"

// Number of whitespace separated tokens before the file name and
// after it.
const (
	summaryHead = 7
	summaryTail = 17
)

// Elapsed converts d to the value and unit used in summary lines.
// Durations over one minute are given in minutes.
func Elapsed(d time.Duration) (float64, string) {
	x, unit := d.Seconds(), "seconds"
	if x > 60 {
		x, unit = x/60, "minutes"
	}
	return math.Round(x*100) / 100, unit
}

func (s Summary) String() string {
	return fmt.Sprintf("%s %s %s for file %s. %d reads out of %d were considered valid. %d were perfectly aligned. %d were aligned with mismatch",
		summaryPrefix, strconv.FormatFloat(s.Elapsed, 'f', -1, 64), s.Unit, s.Name, s.Valid, s.Total, s.Exact, s.Mismatch)
}

// IsSummary reports whether line looks like a summary line.
func IsSummary(line string) bool {
	return strings.HasPrefix(line, summaryPrefix)
}

const summaryFile = " for file "

// tailStart returns the offset in line of the k-th whitespace
// separated token counted from the end.
func tailStart(line string, k int) int {
	i := len(line)
	for ; k > 0; k-- {
		i = strings.LastIndexFunc(line[:i], func(r rune) bool { return !unicode.IsSpace(r) }) + 1
		i = strings.LastIndexFunc(line[:i], unicode.IsSpace) + 1
	}
	return i
}

// ParseSummary reads a line produced by Summary.String.  Fields are
// found by position; the file name is the raw text between the fixed
// head and tail, so any whitespace in it is kept.
func ParseSummary(line string) (Summary, error) {

	var s Summary
	toks := strings.Fields(line)
	n := len(toks)
	if !IsSummary(line) || n < summaryHead+1+summaryTail {
		return s, errors.Errorf("not a summary line: %q", line)
	}
	tail := toks[n-summaryTail:]
	if toks[5] != "for" || toks[6] != "file" || tail[1] != "reads" || tail[9] != "were" || tail[13] != "were" {
		return s, errors.Errorf("not a summary line: %q", line)
	}

	a := strings.Index(line, summaryFile) + len(summaryFile)
	b := tailStart(line, summaryTail)
	if b <= a {
		return s, errors.Errorf("not a summary line: %q", line)
	}
	s.Name = strings.TrimSuffix(strings.TrimSuffix(line[a:b], " "), ".")
	s.Unit = toks[4]

	var err error
	if s.Elapsed, err = strconv.ParseFloat(toks[3], 64); err != nil {
		return s, errors.Wrap(err, "elapsed time")
	}

	for _, f := range []struct {
		tok string
		dst *int64
	}{
		{tail[0], &s.Valid},
		{tail[4], &s.Total},
		{tail[8], &s.Exact},
		{tail[12], &s.Mismatch},
	} {
		if *f.dst, err = strconv.ParseInt(f.tok, 10, 64); err != nil {
			return s, errors.Wrapf(err, "summary for %s", s.Name)
		}
	}

	return s, nil
}
