// Copyright 2017, Kerby Shedden and the Muscato contributors.

package count

import (
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/willf/bloom"
)

const (
	// Expected number of distinct non-matching windows per file,
	// used to size the Bloom filter.
	nonmatchExpected = 5 * 1000 * 1000

	// Target false positive rate of the Bloom filter.  A false
	// positive drops a window from the output, it never affects
	// counting.
	nonmatchFPR = 0.001
)

var newline = []byte("\n")

// NonMatchSink writes each distinct window it is given once, one per
// line, to a snappy compressed file.  Windows are deduplicated with a
// Bloom filter so memory use does not grow with the number of
// distinct windows.
type NonMatchSink struct {
	fid    *os.File
	wtr    *snappy.Writer
	filter *bloom.BloomFilter
	n      int64
	err    error
}

// NewNonMatchSink creates the output file fname.
func NewNonMatchSink(fname string) (*NonMatchSink, error) {

	fid, err := os.Create(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", fname)
	}

	return &NonMatchSink{
		fid:    fid,
		wtr:    snappy.NewBufferedWriter(fid),
		filter: bloom.NewWithEstimates(nonmatchExpected, nonmatchFPR),
	}, nil
}

// Add records a window.  A nil sink ignores all windows.
func (s *NonMatchSink) Add(w []byte) {
	if s == nil || s.err != nil {
		return
	}
	if s.filter.TestAndAdd(w) {
		return
	}
	if _, err := s.wtr.Write(w); err != nil {
		s.err = err
		return
	}
	if _, err := s.wtr.Write(newline); err != nil {
		s.err = err
		return
	}
	s.n++
}

// Written returns the number of windows written.
func (s *NonMatchSink) Written() int64 {
	if s == nil {
		return 0
	}
	return s.n
}

// Close flushes and closes the file, returning the first write error.
func (s *NonMatchSink) Close() error {
	if s == nil {
		return nil
	}
	err := s.wtr.Close()
	if e := s.fid.Close(); err == nil {
		err = e
	}
	if s.err != nil {
		return s.err
	}
	return err
}
