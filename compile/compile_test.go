// Copyright 2017, Kerby Shedden and the Muscato contributors.

package compile

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kshedden/sgcount/count"
	"github.com/kshedden/sgcount/guides"
	"github.com/pkg/errors"
)

func TestElapsed(t *testing.T) {
	for _, c := range []struct {
		d    time.Duration
		x    float64
		unit string
	}{
		{1234 * time.Millisecond, 1.23, "seconds"},
		{60 * time.Second, 60, "seconds"},
		{90 * time.Second, 1.5, "minutes"},
		{125 * time.Minute, 125, "minutes"},
	} {
		x, unit := Elapsed(c.d)
		if x != c.x || unit != c.unit {
			t.Errorf("Elapsed(%v) = %v %s, want %v %s", c.d, x, unit, c.x, c.unit)
		}
	}
}

func TestSummary(t *testing.T) {

	s := Summary{Name: "sample 1", Elapsed: 2.5, Unit: "minutes", Valid: 90, Total: 100, Exact: 80, Mismatch: 10}
	line := s.String()
	want := "#script ran in 2.5 minutes for file sample 1. 90 reads out of 100 were considered valid. 80 were perfectly aligned. 10 were aligned with mismatch"
	if line != want {
		t.Fatalf("got\n%s\nwant\n%s", line, want)
	}

	p, err := ParseSummary(line)
	if err != nil {
		t.Fatal(err)
	}
	if p != s {
		t.Errorf("parsed %+v, want %+v", p, s)
	}

	for _, name := range []string{"run\t2", "a  b", " lead", "x.fq.", "s. 1 reads out of"} {
		s.Name = name
		p, err := ParseSummary(s.String())
		if err != nil {
			t.Errorf("%q: %v", name, err)
			continue
		}
		if p.Name != name {
			t.Errorf("name %q read back as %q", name, p.Name)
		}
	}

	for _, bad := range []string{
		"",
		"#sgRNA,Reads",
		"#script ran in 2.5 minutes for file x. 90 reads out of 100 were considered valid.",
		"#script ran in x minutes for file x. 90 reads out of 100 were considered valid. 80 were perfectly aligned. 10 were aligned with mismatch",
		"#script ran in 2 minutes for file x. 90 reads out of many were considered valid. 80 were perfectly aligned. 10 were aligned with mismatch",
	} {
		if _, err := ParseSummary(bad); err == nil {
			t.Errorf("no error for %q", bad)
		}
	}
}

func testSamples() []*Sample {
	return []*Sample{
		{Name: "s1", Counts: map[string]int64{"G2": 3, "G1": 1}},
		{Name: "s2", Counts: map[string]int64{"G3": 7}},
		{Name: "bad", Err: errors.New("unreadable")},
		{Name: "s3", Counts: map[string]int64{"G1": 2, "G3": 0}},
	}
}

func TestMerge(t *testing.T) {

	m := Merge(testSamples())

	if !reflect.DeepEqual(m.Samples, []string{"s1", "s2", "s3"}) {
		t.Errorf("Samples = %v", m.Samples)
	}
	if !reflect.DeepEqual(m.Guides, []string{"G1", "G2", "G3"}) {
		t.Errorf("Guides = %v", m.Guides)
	}
	want := [][]int64{{1, 0, 2}, {3, 0, 0}, {0, 7, 0}}
	if !reflect.DeepEqual(m.Counts, want) {
		t.Errorf("Counts = %v, want %v", m.Counts, want)
	}

	recs := m.Records()
	if strings.Join(recs[0], ",") != "#sgRNA,s1,s2,s3" || strings.Join(recs[3], ",") != "G3,0,7,0" {
		t.Errorf("Records = %v", recs)
	}
}

// The matrix depends only on the sample list, not on the order in
// which counts were accumulated.
func TestMergeDeterministic(t *testing.T) {

	rng := rand.New(rand.NewSource(1))
	ref := Merge(testSamples()).Records()

	for k := 0; k < 20; k++ {
		samples := testSamples()
		for _, s := range samples {
			if s.Counts == nil {
				continue
			}
			c := make(map[string]int64)
			keys := make([]string, 0, len(s.Counts))
			for g := range s.Counts {
				keys = append(keys, g)
			}
			rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
			for _, g := range keys {
				c[g] = s.Counts[g]
			}
			s.Counts = c
		}
		if got := Merge(samples).Records(); !reflect.DeepEqual(got, ref) {
			t.Fatalf("got %v, want %v", got, ref)
		}
	}
}

func TestFromResult(t *testing.T) {

	reg, _ := guides.NewRegistry([]guides.Guide{
		{Name: "A", Seq: "ACGT"},
		{Name: "B", Seq: "TTTT"},
		{Name: "A", Seq: "GGGG"},
	})
	res := &count.Result{
		Name:     "s",
		Reads:    10,
		Passed:   8,
		Exact:    5,
		Mismatch: 2,
		Counts:   []int64{4, 1, 2},
		Elapsed:  3 * time.Second,
	}

	s := FromResult(res, reg)
	if s.Counts["A"] != 6 || s.Counts["B"] != 1 {
		t.Errorf("Counts = %v", s.Counts)
	}
	if s.Summary.Valid != 7 || s.Summary.Total != 10 || s.Summary.Unit != "seconds" {
		t.Errorf("Summary = %+v", s.Summary)
	}

	res.Err = errors.New("bad")
	if s := FromResult(res, reg); s.Err == nil || len(s.Counts) != 0 {
		t.Errorf("failed result kept counts %v", s.Counts)
	}
}

func TestStatsRecords(t *testing.T) {

	samples := testSamples()
	samples[0].Summary = Summary{Name: "s1", Elapsed: 1.25, Unit: "seconds", Valid: 4, Total: 9, Exact: 3, Mismatch: 1}

	recs := StatsRecords(Header{Version: "1.0", Mismatches: 1, Phred: 30}, samples)
	if len(recs) != 8 {
		t.Fatalf("%d records", len(recs))
	}
	if recs[0][0] != "#sgcount version: 1.0" || recs[1][0] != "#Mismatch: 1" || recs[2][0] != "#Phred Score: 30" {
		t.Errorf("header lines %v", recs[:3])
	}
	if got := strings.Join(recs[4], ","); got != "s1,1.25,seconds,9,4,3,1,ok" {
		t.Errorf("row = %s", got)
	}
	if got := strings.Join(recs[6], ","); got != "bad,0,seconds,0,0,0,0,failed: unreadable" {
		t.Errorf("failed row = %s", got)
	}
}

func TestSampleFiles(t *testing.T) {

	dir := t.TempDir()
	samples := testSamples()
	for _, s := range samples {
		if s.Err != nil {
			continue
		}
		s.Summary = Summary{Name: s.Name, Elapsed: 0.5, Unit: "seconds", Total: 20, Valid: 10, Exact: 9, Mismatch: 1}
		if err := WriteSample(dir, s); err != nil {
			t.Fatal(err)
		}
	}

	b, err := os.ReadFile(SampleFile(dir, "s1"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 || !IsSummary(lines[0]) || lines[1] != "#sgRNA,Reads" || lines[2] != "G1,1" || lines[3] != "G2,3" {
		t.Errorf("s1 table:\n%s", b)
	}

	got, err := FromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d samples", len(got))
	}
	var ok []*Sample
	for _, s := range samples {
		if s.Err == nil {
			ok = append(ok, s)
		}
	}
	for i, s := range got {
		if s.Name != ok[i].Name || s.Summary != ok[i].Summary || !reflect.DeepEqual(s.Counts, ok[i].Counts) {
			t.Errorf("sample %d: got %+v, want %+v", i, s, ok[i])
		}
	}

	// Compiling twice gives identical tables.
	var prev []byte
	for k := 0; k < 2; k++ {
		if err := WriteTables(dir, Header{Version: "1.0"}, got); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dir, MatrixFile))
		if err != nil {
			t.Fatal(err)
		}
		if k > 0 && !bytes.Equal(b, prev) {
			t.Errorf("compiled tables differ")
		}
		prev = b
	}
	if string(prev) != "#sgRNA,s1,s2,s3\nG1,1,0,2\nG2,3,0,0\nG3,0,7,0\n" {
		t.Errorf("compiled.csv:\n%s", prev)
	}

	if _, err := FromDir(t.TempDir()); !errors.Is(err, guides.ErrSourceNotFound) {
		t.Errorf("empty folder: got %v", err)
	}
}

func TestReadSampleErrors(t *testing.T) {
	for _, src := range []string{
		"#sgRNA,Reads\nG1,1\n",
		"#script ran in 1 seconds for file s. 1 reads out of 1 were considered valid. 1 were perfectly aligned. 0 were aligned with mismatch\nG1,x\n",
		"#script ran in 1 seconds for file s. 1 reads out of 1 were considered valid. 1 were perfectly aligned. 0 were aligned with mismatch\nG1\n",
	} {
		if _, err := ReadSample(strings.NewReader(src), "s"); err == nil {
			t.Errorf("no error for %q", src)
		}
	}
}
