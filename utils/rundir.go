// Copyright 2017, Kerby Shedden and the Muscato contributors.

package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RunDir is the per-run log directory, LogDir/<id>.
type RunDir struct {
	ID   string
	Path string
	fid  *os.File
}

// MakeRunDir creates a uniquely named subdirectory of config.LogDir.
func MakeRunDir(config *Config) (*RunDir, error) {

	// log files, the saved config and profiles of one run share this id
	xuid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	uid := xuid.String()

	pa := filepath.Join(config.LogDir, uid)
	if err := os.MkdirAll(pa, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating log directory %s", pa)
	}

	return &RunDir{ID: uid, Path: pa}, nil
}

// Logger opens name inside the run directory and returns a logger
// writing to it.  If also is not nil, log lines are copied there.
func (rd *RunDir) Logger(name string, also io.Writer) (*log.Logger, error) {
	fid, err := os.Create(filepath.Join(rd.Path, name))
	if err != nil {
		return nil, err
	}
	rd.fid = fid

	var w io.Writer = fid
	if also != nil {
		w = io.MultiWriter(fid, also)
	}
	return log.New(w, "", log.Ltime), nil
}

// Close closes the log file.
func (rd *RunDir) Close() error {
	if rd.fid == nil {
		return nil
	}
	return rd.fid.Close()
}
