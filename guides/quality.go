// Copyright 2017, Kerby Shedden and the Muscato contributors.

package guides

import (
	"github.com/pkg/errors"
)

const (
	// DefaultPhredOffset is the ASCII code of quality score zero in
	// Sanger/Illumina 1.8+ fastq files.
	DefaultPhredOffset = 33

	// MaxPhred is the largest score representable with offset 33
	// in printable ASCII.
	MaxPhred = 93

	// Ambiguous is the base call marking an unknown base.
	Ambiguous = 'N'
)

// QualityGate accepts a read window when it contains no ambiguous
// base and every base has at least the minimum quality score.
type QualityGate struct {
	min byte
}

// NewQualityGate returns a gate accepting bases with score >= phred,
// where quality characters encode offset+score.
func NewQualityGate(phred, offset int) (QualityGate, error) {
	if phred < 0 || phred > MaxPhred {
		return QualityGate{}, errors.Wrapf(ErrConfig, "phred score %d outside [0, %d]", phred, MaxPhred)
	}
	if offset < 0 || offset+phred > 126 {
		return QualityGate{}, errors.Wrapf(ErrConfig, "phred offset %d is not usable with score %d", offset, phred)
	}
	return QualityGate{min: byte(offset + phred)}, nil
}

// Accept reports whether the window passes.  seq must already be
// upper case, and qual must be at least as long as seq.
func (q QualityGate) Accept(seq, qual []byte) bool {
	for i, c := range seq {
		if c == Ambiguous || qual[i] < q.min {
			return false
		}
	}
	return true
}
