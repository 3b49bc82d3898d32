// Copyright 2017, Kerby Shedden and the Muscato contributors.

package utils

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// ReadInSeq reads fastq records four lines at a time.  Name, Seq and
// Qual are overwritten by each call to Next.
type ReadInSeq struct {
	rc      io.Closer
	scanner *bufio.Scanner
	lnum    int
	err     error
	Name    []byte
	Seq     []byte
	Qual    []byte
}

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, x := range c {
		if err := x.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a text file for reading.  Files ending in ".sz" are
// snappy streams, all other compression is detected by xopen.
func Open(fname string) (io.Reader, io.Closer, error) {

	if strings.HasSuffix(fname, ".sz") {
		fid, err := os.Open(fname)
		if err != nil {
			return nil, nil, err
		}
		return snappy.NewReader(fid), fid, nil
	}

	rdr, err := xopen.Ropen(fname)
	if err != nil {
		return nil, nil, err
	}
	return rdr, rdr, nil
}

// NewReadInSeq opens a fastq file.
func NewReadInSeq(seqfile string) (*ReadInSeq, error) {

	rdr, c, err := Open(seqfile)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", seqfile)
	}

	ris := NewReadInSeqFrom(rdr)
	ris.rc = c
	return ris, nil
}

// NewReadInSeqFrom reads fastq records from r.
func NewReadInSeqFrom(r io.Reader) *ReadInSeq {

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	return &ReadInSeq{
		scanner: scanner,
		rc:      closers(nil),
	}
}

// Next advances to the next record.  It returns false at the end of
// the input or on error; Err distinguishes the two.
func (ris *ReadInSeq) Next() bool {

	if ris.err != nil {
		return false
	}

	for j := 0; j < 4; j++ {

		if !ris.scanner.Scan() {
			if err := ris.scanner.Err(); err != nil {
				ris.err = errors.Wrapf(err, "line %d", ris.lnum+1)
			} else if j > 0 {
				ris.err = errors.Errorf("truncated record at line %d", ris.lnum)
			}
			return false
		}
		ris.lnum++

		line := ris.scanner.Bytes()

		switch j {
		case 0:
			if len(line) == 0 {
				// Tolerate blank lines between records
				j--
				continue
			}
			if line[0] != '@' {
				ris.err = errors.Errorf("line %d: record header does not start with '@'", ris.lnum)
				return false
			}
			ris.Name = append(ris.Name[:0], line[1:]...)
		case 1:
			ris.Seq = append(ris.Seq[:0], line...)
		case 2:
			if len(line) == 0 || line[0] != '+' {
				ris.err = errors.Errorf("line %d: missing '+' separator", ris.lnum)
				return false
			}
		case 3:
			ris.Qual = append(ris.Qual[:0], line...)
		}
	}

	return true
}

// Err returns the first error met by Next.
func (ris *ReadInSeq) Err() error {
	return ris.err
}

// Close releases the underlying file.
func (ris *ReadInSeq) Close() error {
	return ris.rc.Close()
}
