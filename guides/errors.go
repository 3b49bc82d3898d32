// Copyright 2017, Kerby Shedden and the Muscato contributors.

package guides

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfig marks a missing or invalid run parameter.  It is
	// fatal and is reported before any file is processed.
	ErrConfig = errors.New("configuration error")

	// ErrSourceNotFound marks a missing guide file or input folder.
	ErrSourceNotFound = errors.New("source not found")
)

// DuplicateError reports a guide whose sequence was already taken by
// an earlier guide.  The later guide is dropped; this is a warning,
// not a failure.
type DuplicateError struct {
	Kept    string
	Dropped string
	Seq     string
	Line    int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("line %d: %s and %s share the same sequence %s, only %s will be considered valid",
		e.Line, e.Kept, e.Dropped, e.Seq, e.Kept)
}

// InvalidError reports a guide row whose sequence holds letters other
// than A, C, G and T.  No read window can match it exactly, so the row
// is dropped with a warning.
type InvalidError struct {
	Name string
	Seq  string
	Line int
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("line %d: %s has sequence %q which is not A/C/G/T, it is skipped", e.Line, e.Name, e.Seq)
}
