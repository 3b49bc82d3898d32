// Copyright 2017, Kerby Shedden and the Muscato contributors.

package compile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kshedden/sgcount/guides"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

const (
	sampleSuffix = "_reads.csv"

	// MatrixFile and StatsFile are written to the output folder.
	MatrixFile = "compiled.csv"
	StatsFile  = "compiled_stats.csv"
)

// SampleFile returns the per-file table name for sample name.
func SampleFile(dir, name string) string {
	return filepath.Join(dir, name+sampleSuffix)
}

func writeRecords(fname string, recs [][]string) error {

	out, err := xopen.Wopen(fname)
	if err != nil {
		return errors.Wrapf(err, "creating %s", fname)
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(recs); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", fname)
	}

	return errors.Wrapf(out.Close(), "closing %s", fname)
}

// WriteSample writes the per-file table of s into dir.
func WriteSample(dir string, s *Sample) error {

	names := make([]string, 0, len(s.Counts))
	for g := range s.Counts {
		names = append(names, g)
	}
	sort.Strings(names)

	recs := make([][]string, 0, len(names)+2)
	recs = append(recs, []string{s.Summary.String()}, []string{"#sgRNA", "Reads"})
	for _, g := range names {
		recs = append(recs, []string{g, strconv.FormatInt(s.Counts[g], 10)})
	}

	return writeRecords(SampleFile(dir, s.Name), recs)
}

// WriteTables writes the count matrix and the stats table into dir.
func WriteTables(dir string, h Header, samples []*Sample) error {
	if err := writeRecords(filepath.Join(dir, MatrixFile), Merge(samples).Records()); err != nil {
		return err
	}
	return writeRecords(filepath.Join(dir, StatsFile), StatsRecords(h, samples))
}

// ReadSample reads a per-file table.  Lines starting with '#' other
// than the summary line are skipped.
func ReadSample(r io.Reader, name string) (*Sample, error) {

	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1

	s := &Sample{
		Name:   name,
		Counts: make(map[string]int64),
	}

	var summary bool
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch {
		case IsSummary(rec[0]):
			if s.Summary, err = ParseSummary(strings.Join(rec, ",")); err != nil {
				return nil, err
			}
			summary = true
			continue
		case strings.HasPrefix(rec[0], "#"):
			continue
		}

		if len(rec) < 2 {
			line, _ := rdr.FieldPos(0)
			return nil, errors.Errorf("line %d: expected guide name and count", line)
		}
		c, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			line, _ := rdr.FieldPos(1)
			return nil, errors.Wrapf(err, "line %d", line)
		}
		s.Counts[rec[0]] += c
	}

	if !summary {
		return nil, errors.New("no summary line")
	}

	return s, nil
}

// FromDir reads every per-file table in dir, in order of sample name.
func FromDir(dir string) ([]*Sample, error) {

	files, err := filepath.Glob(filepath.Join(dir, "*"+sampleSuffix))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(guides.ErrSourceNotFound, "no *%s files in %s", sampleSuffix, dir)
	}

	var samples []*Sample
	for _, fn := range files {
		name := strings.TrimSuffix(filepath.Base(fn), sampleSuffix)
		fid, err := os.Open(fn)
		if err != nil {
			return nil, err
		}
		s, err := ReadSample(fid, name)
		fid.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", fn)
		}
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })

	return samples, nil
}
