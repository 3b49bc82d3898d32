// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package count streams one fastq file, classifies the guide window of
// every read, and accumulates per-guide counts for that file.
//
// For each read the window seq[Start:Start+Length] is taken and upper
// cased.  Windows failing the quality gate (an N, or any base below
// the quality threshold) and reads too short to hold the window only
// count toward Reads.  Passing windows are looked up exactly; if that
// fails and mismatches are allowed, the registry is searched for the
// single guide within the mismatch budget.  Ambiguous windows are
// dropped.
package count

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kshedden/sgcount/guides"
	"github.com/kshedden/sgcount/utils"
	"github.com/pkg/errors"
)

// Check for cancellation after this many reads.
const cancelEvery = 1 << 16

// Params controls windowing and matching.  It is shared read-only by
// all file scans of a run.
type Params struct {
	Start      int
	Length     int
	Mismatches int
	Gate       guides.QualityGate

	// If true no failed-window cache is kept.
	LowMemory bool

	// If not empty, distinct non-matching windows are written to
	// NonMatchDir/<name>_nonmatch.txt.sz.
	NonMatchDir string
}

// Result summarizes the scan of one file.
type Result struct {
	Name string
	Path string

	// All records in the file
	Reads int64

	// Records whose window passed the quality gate
	Passed int64

	// Windows equal to a guide
	Exact int64

	// Windows attributed to a single guide with mismatches
	Mismatch int64

	// Windows searched with mismatches and found unmatchable or
	// ambiguous (excludes repeats answered by the cache)
	Failed int64

	// Per-guide counts, indexed like Registry.Guides
	Counts []int64

	Elapsed time.Duration

	// Set if the file could not be read to the end.  Counts are
	// then partial and should not be reported.
	Err error
}

// Valid is the number of reads attributed to a guide.
func (r *Result) Valid() int64 {
	return r.Exact + r.Mismatch
}

// NonMatchName returns the non-matching window file for sample name.
func NonMatchName(dir, name string) string {
	return filepath.Join(dir, name+"_nonmatch.txt.sz")
}

// upper copies src into dst, upper casing ASCII letters.
func upper(dst, src []byte) []byte {
	dst = dst[:len(src)]
	for i, c := range src {
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		dst[i] = c
	}
	return dst
}

// File scans the fastq file at path.  The result is always returned;
// Result.Err is set if the scan did not complete.
func File(ctx context.Context, name, path string, reg *guides.Registry, p *Params) *Result {

	res := &Result{
		Name:   name,
		Path:   path,
		Counts: reg.NewCounts(),
	}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	ris, err := utils.NewReadInSeq(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer ris.Close()

	var sink *NonMatchSink
	if p.NonMatchDir != "" {
		sink, err = NewNonMatchSink(NonMatchName(p.NonMatchDir, name))
		if err != nil {
			res.Err = err
			return res
		}
	}

	res.Err = scan(ctx, ris, reg, p, res, sink)
	if err := sink.Close(); err != nil && res.Err == nil {
		res.Err = errors.Wrap(err, "writing non-matching windows")
	}
	if res.Err != nil {
		res.Err = errors.Wrapf(res.Err, "%s", path)
	}

	return res
}

func scan(ctx context.Context, ris *utils.ReadInSeq, reg *guides.Registry, p *Params, res *Result, sink *NonMatchSink) error {

	failed := NewFailedCache(p.LowMemory, p.Mismatches)
	q1 := p.Start
	q2 := p.Start + p.Length
	win := make([]byte, p.Length)

	for ris.Next() {

		res.Reads++
		if res.Reads%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		// The read is too short to hold the window
		if len(ris.Seq) < q2 || len(ris.Qual) < q2 {
			continue
		}

		w := upper(win, ris.Seq[q1:q2])
		if !p.Gate.Accept(w, ris.Qual[q1:q2]) {
			continue
		}
		res.Passed++

		if i, ok := reg.Exact(w); ok {
			res.Counts[i]++
			res.Exact++
			continue
		}

		if p.Mismatches == 0 {
			sink.Add(w)
			continue
		}

		if failed.Has(w) {
			continue
		}

		if i, ok := reg.Search(w, p.Mismatches); ok {
			res.Counts[i]++
			res.Mismatch++
			continue
		}

		res.Failed++
		failed.Add(w)
		sink.Add(w)
	}

	return ris.Err()
}
