// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package guides holds the reference (guide) sequences that reads are
// classified against, the per-base quality gate applied to each read
// window, and the exact and mismatch-tolerant lookups.
//
// A Registry is read-only once loaded and may be shared by any number
// of goroutines.  Counts are not stored in the Registry; each file
// scan owns a count slice indexed like Registry.Guides (see
// NewCounts).
package guides

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// Guide is one reference sequence.
type Guide struct {
	Name string
	Seq  string
}

// Registry is an indexed table of guides.
type Registry struct {

	// Guides in the order they were first seen in the source.
	Guides []Guide

	// Sequence to position in Guides.
	index map[string]int

	// Byte form of each guide sequence, used by Search.
	seqs [][]byte
}

// NewRegistry builds a registry from guides given in order.  Guides
// whose sequence was already seen are dropped and reported.
func NewRegistry(gl []Guide) (*Registry, []*DuplicateError) {

	reg := &Registry{
		index: make(map[string]int, len(gl)),
	}

	var dups []*DuplicateError
	for i, g := range gl {
		g.Seq = Normalize(g.Seq)
		if j, ok := reg.index[g.Seq]; ok {
			dups = append(dups, &DuplicateError{
				Kept:    reg.Guides[j].Name,
				Dropped: g.Name,
				Seq:     g.Seq,
				Line:    i + 1,
			})
			continue
		}
		reg.index[g.Seq] = len(reg.Guides)
		reg.Guides = append(reg.Guides, g)
		reg.seqs = append(reg.seqs, []byte(g.Seq))
	}

	return reg, dups
}

// Normalize upper-cases a sequence and removes all spaces.
func Normalize(seq string) string {
	return strings.ToUpper(strings.Replace(seq, " ", "", -1))
}

func isDNA(seq string) bool {
	if len(seq) == 0 {
		return false
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// Load reads guides from name,sequence rows.  Blank lines and lines
// starting with '#' are skipped, as is a first row whose sequence
// field is not DNA (a column header).  Later rows with a non-DNA
// sequence are dropped.  The returned warnings are *InvalidError and
// *DuplicateError values in file order.
func Load(r io.Reader) (*Registry, []error, error) {

	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.Comment = '#'
	rdr.TrimLeadingSpace = true
	rdr.LazyQuotes = true

	var gl []Guide
	var lines []int
	var warn []error
	for first := true; ; first = false {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading guides")
		}
		line, _ := rdr.FieldPos(0)

		if len(rec) < 2 {
			return nil, nil, errors.Wrapf(ErrConfig, "guide file line %d: expected name,sequence", line)
		}

		name := strings.TrimSpace(rec[0])
		seq := Normalize(rec[1])
		if !isDNA(seq) {
			if !first {
				warn = append(warn, &InvalidError{Name: name, Seq: seq, Line: line})
			}
			continue
		}

		gl = append(gl, Guide{Name: name, Seq: seq})
		lines = append(lines, line)
	}

	if len(gl) == 0 {
		return nil, nil, errors.Wrap(ErrConfig, "guide file contains no guides")
	}

	reg, dups := NewRegistry(gl)
	for _, d := range dups {
		d.Line = lines[d.Line-1]
		warn = append(warn, d)
	}
	sort.SliceStable(warn, func(i, j int) bool { return warnLine(warn[i]) < warnLine(warn[j]) })

	return reg, warn, nil
}

func warnLine(err error) int {
	switch e := err.(type) {
	case *InvalidError:
		return e.Line
	case *DuplicateError:
		return e.Line
	}
	return 0
}

// LoadFile reads guides from a (possibly compressed) file.
func LoadFile(fname string) (*Registry, []error, error) {

	if _, err := os.Stat(fname); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(ErrSourceNotFound, "guide file %s", fname)
		}
		return nil, nil, errors.Wrapf(err, "guide file %s", fname)
	}

	fid, err := xopen.Ropen(fname)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening guide file %s", fname)
	}
	defer fid.Close()

	return Load(fid)
}

// Len returns the number of guides.
func (reg *Registry) Len() int {
	return len(reg.Guides)
}

// NewCounts returns a zeroed count slice indexed like reg.Guides.
func (reg *Registry) NewCounts() []int64 {
	return make([]int64, len(reg.Guides))
}

// Exact returns the position of the guide whose sequence equals w.
func (reg *Registry) Exact(w []byte) (int, bool) {
	i, ok := reg.index[string(w)]
	return i, ok
}
