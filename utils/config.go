// Copyright 2017, Kerby Shedden and the Muscato contributors.

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kshedden/sgcount/guides"
	"github.com/pkg/errors"
)

type Config struct {

	// The directory containing the sequencing read files.
	SeqDir string

	// Only files in SeqDir ending with this suffix are processed,
	// e.g. ".fastq.gz" or ".fastq".  Gzip, xz, zstd and bzip2
	// input is detected from the file contents; ".sz" files are
	// read as snappy streams.
	Extension string

	// The name of the csv file holding one name,sequence row per
	// guide.
	GuideFileName string

	// The directory where the per-file and compiled tables are
	// written.
	OutDir string

	// The zero-based position in each read where the guide window
	// starts.
	Start int

	// The width of the guide window.
	Length int

	// The number of substitutions allowed between a window and a
	// guide.  If zero, only exact matches are counted.
	Mismatches int

	// Every base in the window must have at least this quality
	// score.
	Phred int

	// The ASCII code of quality score zero.
	PhredOffset int

	// If true, windows already known not to match are not
	// remembered, trading CPU time for memory.
	LowMemory bool

	// The number of files processed concurrently.  If zero, one
	// less than the number of CPUs is used.
	Workers int

	// New files are held back while system memory use (percent)
	// is at or above this level, as long as another file is still
	// being processed.
	MemLimit float64

	// If true, the distinct windows that passed the quality gate
	// but matched no guide are written for each file to
	// OutDir/<sample>_nonmatch.txt.sz.
	NonMatch bool

	// The directory where log files are written.  Each run writes
	// into its own subdirectory named by a generated id.  Defaults
	// to OutDir/sgcount_logs.
	LogDir string

	// Capture CPU profile data into the log directory.
	CPUProfile bool

	// Do not draw a progress bar on stderr.
	NoProgress bool
}

// Defaults returns a configuration with the default window, mismatch
// and quality settings.
func Defaults() *Config {
	return &Config{
		Extension:   ".fastq.gz",
		Length:      20,
		Mismatches:  1,
		Phred:       30,
		PhredOffset: guides.DefaultPhredOffset,
		MemLimit:    98,
	}
}

// ReadConfig reads a configuration file on top of the defaults.  Files
// ending in ".toml" are decoded as TOML, all others as JSON.
func ReadConfig(filename string) (*Config, error) {

	config := Defaults()

	if strings.HasSuffix(filename, ".toml") {
		if _, err := toml.DecodeFile(filename, config); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", filename)
		}
		return config, nil
	}

	fid, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", filename)
	}
	defer fid.Close()
	dec := json.NewDecoder(fid)
	if err := dec.Decode(config); err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", filename)
	}

	return config, nil
}

// Check validates the configuration and fills in derived defaults.
// The returned notes describe each default that was applied.
func (config *Config) Check() ([]string, error) {

	var notes []string

	if config.SeqDir == "" {
		return nil, errors.Wrap(guides.ErrConfig, "SeqDir not provided")
	}
	if config.GuideFileName == "" {
		return nil, errors.Wrap(guides.ErrConfig, "GuideFileName not provided")
	}
	if config.OutDir == "" {
		return nil, errors.Wrap(guides.ErrConfig, "OutDir not provided")
	}
	if config.Extension == "" {
		return nil, errors.Wrap(guides.ErrConfig, "Extension not provided")
	}
	if config.Start < 0 {
		return nil, errors.Wrapf(guides.ErrConfig, "Start must not be negative, got %d", config.Start)
	}
	if config.Length <= 0 {
		return nil, errors.Wrapf(guides.ErrConfig, "Length must be positive, got %d", config.Length)
	}
	if config.Mismatches < 0 || config.Mismatches > config.Length {
		return nil, errors.Wrapf(guides.ErrConfig, "Mismatches must be in [0, %d], got %d", config.Length, config.Mismatches)
	}
	if _, err := guides.NewQualityGate(config.Phred, config.PhredOffset); err != nil {
		return nil, err
	}
	if config.Workers < 0 {
		return nil, errors.Wrapf(guides.ErrConfig, "Workers must not be negative, got %d", config.Workers)
	}

	if config.Workers == 0 {
		config.Workers = DefaultWorkers()
		notes = append(notes, fmt.Sprintf("Workers not provided, defaulting to %d", config.Workers))
	}
	if config.MemLimit <= 0 || config.MemLimit > 100 {
		notes = append(notes, fmt.Sprintf("MemLimit %.1f out of range, defaulting to 98", config.MemLimit))
		config.MemLimit = 98
	}
	if config.LogDir == "" {
		config.LogDir = filepath.Join(config.OutDir, "sgcount_logs")
	}

	if st, err := os.Stat(config.SeqDir); err != nil || !st.IsDir() {
		return nil, errors.Wrapf(guides.ErrSourceNotFound, "SeqDir %s is not a directory", config.SeqDir)
	}
	if _, err := os.Stat(config.GuideFileName); err != nil {
		return nil, errors.Wrapf(guides.ErrSourceNotFound, "GuideFileName %s", config.GuideFileName)
	}

	return notes, nil
}

// DefaultWorkers is one less than the number of CPUs, but at least one.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n >= 2 {
		n--
	}
	return n
}

// Save writes the configuration in JSON format.
func (config *Config) Save(filename string) error {
	fid, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fid.Close()
	enc := json.NewEncoder(fid)
	enc.SetIndent("", "  ")
	return enc.Encode(config)
}
