// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package compile merges per-file guide counts into a guide by sample
// count matrix and a table of run statistics, and reads and writes
// the csv tables holding them.
//
// The per-file table <sample>_reads.csv starts with a summary line
// (see Summary), then the header #sgRNA,Reads and one row per guide
// in name order.  A folder of such tables can be compiled again
// without rescanning the reads.
package compile

import (
	"sort"
	"strconv"

	"github.com/kshedden/sgcount/count"
	"github.com/kshedden/sgcount/guides"
)

// Sample holds the counts of one read file, keyed by guide name.
type Sample struct {
	Name    string
	Summary Summary
	Counts  map[string]int64

	// Set when the file could not be processed; Counts is then
	// empty.
	Err error
}

// FromResult converts a scan result.  Guides sharing a name have their
// counts added.
func FromResult(res *count.Result, reg *guides.Registry) *Sample {

	elapsed, unit := Elapsed(res.Elapsed)
	s := &Sample{
		Name: res.Name,
		Summary: Summary{
			Name:     res.Name,
			Elapsed:  elapsed,
			Unit:     unit,
			Valid:    res.Valid(),
			Total:    res.Reads,
			Exact:    res.Exact,
			Mismatch: res.Mismatch,
		},
		Counts: make(map[string]int64),
		Err:    res.Err,
	}
	if res.Err != nil {
		return s
	}

	for i, g := range reg.Guides {
		s.Counts[g.Name] += res.Counts[i]
	}

	return s
}

// Matrix is the guide by sample count table.
type Matrix struct {
	Samples []string

	// Guide names in ascending order
	Guides []string

	// Counts[i][j] is the count of Guides[i] in Samples[j]
	Counts [][]int64
}

// Merge builds the count matrix.  Columns follow the order of samples,
// failed samples are left out.  Rows are the union of guide names
// over all samples, a guide missing from a sample counts 0.
func Merge(samples []*Sample) *Matrix {

	m := new(Matrix)
	names := make(map[string]int)
	var ok []*Sample
	for _, s := range samples {
		if s.Err != nil {
			continue
		}
		ok = append(ok, s)
		m.Samples = append(m.Samples, s.Name)
		for g := range s.Counts {
			names[g] = 0
		}
	}

	for g := range names {
		m.Guides = append(m.Guides, g)
	}
	sort.Strings(m.Guides)
	for i, g := range m.Guides {
		names[g] = i
	}

	m.Counts = make([][]int64, len(m.Guides))
	for i := range m.Counts {
		m.Counts[i] = make([]int64, len(ok))
	}
	for j, s := range ok {
		for g, c := range s.Counts {
			m.Counts[names[g]][j] = c
		}
	}

	return m
}

// Records returns the matrix as csv records, starting with the
// #sgRNA header.
func (m *Matrix) Records() [][]string {

	recs := make([][]string, 0, len(m.Guides)+1)
	recs = append(recs, append([]string{"#sgRNA"}, m.Samples...))
	for i, g := range m.Guides {
		row := make([]string, 0, len(m.Samples)+1)
		row = append(row, g)
		for _, c := range m.Counts[i] {
			row = append(row, strconv.FormatInt(c, 10))
		}
		recs = append(recs, row)
	}

	return recs
}

// Header describes a run in the first lines of the stats table.
type Header struct {
	Version    string
	Mismatches int
	Phred      int
}

var statsColumns = []string{
	"#Sample name",
	"Running Time",
	"Running Time unit",
	"Total number of reads in sample",
	"Total number of reads that passed quality control parameters",
	"Number of reads that were aligned without mismatches",
	"Number of reads that were aligned with mismatches",
	"Status",
}

// StatsRecords returns the run statistics table as csv records, one
// row per sample in the given order.
func StatsRecords(h Header, samples []*Sample) [][]string {

	recs := [][]string{
		{"#sgcount version: " + h.Version},
		{"#Mismatch: " + strconv.Itoa(h.Mismatches)},
		{"#Phred Score: " + strconv.Itoa(h.Phred)},
		statsColumns,
	}

	for _, s := range samples {
		if s.Err != nil {
			recs = append(recs, []string{s.Name, "0", "seconds", "0", "0", "0", "0", "failed: " + s.Err.Error()})
			continue
		}
		u := s.Summary
		recs = append(recs, []string{
			s.Name,
			strconv.FormatFloat(u.Elapsed, 'f', -1, 64),
			u.Unit,
			strconv.FormatInt(u.Total, 10),
			strconv.FormatInt(u.Valid, 10),
			strconv.FormatInt(u.Exact, 10),
			strconv.FormatInt(u.Mismatch, 10),
			"ok",
		})
	}

	return recs
}
