// Copyright 2017, Kerby Shedden and the Muscato contributors.

package utils

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
)

const twoReads = `@r1 desc
ACGTACGT
+
IIIIIIII
@r2
TTTT
+r2
!!!!

`

func readAll(t *testing.T, ris *ReadInSeq) ([]string, error) {
	t.Helper()
	var seqs []string
	for ris.Next() {
		seqs = append(seqs, string(ris.Seq)+"/"+string(ris.Qual))
	}
	return seqs, ris.Err()
}

func TestReadInSeq(t *testing.T) {

	ris := NewReadInSeqFrom(strings.NewReader(twoReads))
	seqs, err := readAll(t, ris)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ACGTACGT/IIIIIIII", "TTTT/!!!!"}
	if len(seqs) != 2 || seqs[0] != want[0] || seqs[1] != want[1] {
		t.Errorf("got %v, want %v", seqs, want)
	}
	if string(ris.Name) != "r2" {
		t.Errorf("Name = %q", ris.Name)
	}
}

func TestReadInSeqMalformed(t *testing.T) {

	for _, src := range []string{
		"@r1\nACGT\n+\n",
		"@r1\nACGT\n+\nIIII\nr2\nACGT\n+\nIIII\n",
		"@r1\nACGT\nIIII\nIIII\n",
	} {
		ris := NewReadInSeqFrom(strings.NewReader(src))
		if _, err := readAll(t, ris); err == nil {
			t.Errorf("no error for %q", src)
		}
	}
}

func TestReadInSeqCompressed(t *testing.T) {

	dir := t.TempDir()

	gn := filepath.Join(dir, "reads.fastq.gz")
	fid, err := os.Create(gn)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(fid)
	gz.Write([]byte(twoReads))
	gz.Close()
	fid.Close()

	sn := filepath.Join(dir, "reads.fastq.sz")
	fid, err = os.Create(sn)
	if err != nil {
		t.Fatal(err)
	}
	sw := snappy.NewBufferedWriter(fid)
	sw.Write([]byte(twoReads))
	sw.Close()
	fid.Close()

	for _, fn := range []string{gn, sn} {
		ris, err := NewReadInSeq(fn)
		if err != nil {
			t.Fatal(err)
		}
		seqs, err := readAll(t, ris)
		ris.Close()
		if err != nil {
			t.Fatalf("%s: %v", fn, err)
		}
		if len(seqs) != 2 {
			t.Errorf("%s: got %d records", fn, len(seqs))
		}
	}

	if _, err := NewReadInSeq(filepath.Join(dir, "none.fastq")); err == nil {
		t.Errorf("missing file did not fail")
	}
}
