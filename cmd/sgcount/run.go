// Copyright 2017, Kerby Shedden and the Muscato contributors.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kshedden/sgcount/compile"
	"github.com/kshedden/sgcount/count"
	"github.com/kshedden/sgcount/guides"
	"github.com/kshedden/sgcount/runner"
	"github.com/kshedden/sgcount/utils"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Warn when memory use at startup is at least this percentage.
const lowMemoryWarning = 60

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count guides in every read file of a folder",
	Long: `Count guides in every read file of a folder.

Files are processed concurrently, largest first.  A file that cannot be
read is reported in compiled_stats.csv and the other files are still
counted; the command then exits with an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := handleArgs(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, config, os.Stderr)
	},
}

// Flag values, copied into the configuration only when set.
var runFlags = utils.Defaults()

var configFileName string

// runFields copies the field behind each flag.
var runFields = map[string]func(dst, src *utils.Config){
	"seqdir":      func(d, s *utils.Config) { d.SeqDir = s.SeqDir },
	"ext":         func(d, s *utils.Config) { d.Extension = s.Extension },
	"guides":      func(d, s *utils.Config) { d.GuideFileName = s.GuideFileName },
	"out":         func(d, s *utils.Config) { d.OutDir = s.OutDir },
	"start":       func(d, s *utils.Config) { d.Start = s.Start },
	"length":      func(d, s *utils.Config) { d.Length = s.Length },
	"mismatches":  func(d, s *utils.Config) { d.Mismatches = s.Mismatches },
	"phred":       func(d, s *utils.Config) { d.Phred = s.Phred },
	"phredoffset": func(d, s *utils.Config) { d.PhredOffset = s.PhredOffset },
	"lowmem":      func(d, s *utils.Config) { d.LowMemory = s.LowMemory },
	"workers":     func(d, s *utils.Config) { d.Workers = s.Workers },
	"memlimit":    func(d, s *utils.Config) { d.MemLimit = s.MemLimit },
	"nonmatch":    func(d, s *utils.Config) { d.NonMatch = s.NonMatch },
	"logdir":      func(d, s *utils.Config) { d.LogDir = s.LogDir },
	"cpuprofile":  func(d, s *utils.Config) { d.CPUProfile = s.CPUProfile },
	"noprogress":  func(d, s *utils.Config) { d.NoProgress = s.NoProgress },
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&configFileName, "config", "c", "", "JSON or TOML file containing configuration parameters")
	f.StringVarP(&runFlags.SeqDir, "seqdir", "i", "", "folder holding the read files")
	f.StringVarP(&runFlags.Extension, "ext", "e", runFlags.Extension, "suffix of the read files to process")
	f.StringVarP(&runFlags.GuideFileName, "guides", "g", "", "csv file of guide names and sequences")
	f.StringVarP(&runFlags.OutDir, "out", "o", "", "folder for the count tables")
	f.IntVar(&runFlags.Start, "start", runFlags.Start, "zero-based start of the guide window in each read")
	f.IntVar(&runFlags.Length, "length", runFlags.Length, "length of the guide window")
	f.IntVarP(&runFlags.Mismatches, "mismatches", "m", runFlags.Mismatches, "substitutions allowed between window and guide")
	f.IntVarP(&runFlags.Phred, "phred", "q", runFlags.Phred, "minimum quality score of every base in the window")
	f.IntVar(&runFlags.PhredOffset, "phredoffset", runFlags.PhredOffset, "ASCII code of quality score zero")
	f.BoolVar(&runFlags.LowMemory, "lowmem", false, "do not remember windows that failed to match")
	f.IntVarP(&runFlags.Workers, "workers", "j", 0, "files processed at once (default number of CPUs less one)")
	f.Float64Var(&runFlags.MemLimit, "memlimit", runFlags.MemLimit, "hold back new files while memory use (percent) is above this")
	f.BoolVar(&runFlags.NonMatch, "nonmatch", false, "write the distinct non-matching windows of each file")
	f.StringVar(&runFlags.LogDir, "logdir", "", "folder for log files (default <out>/sgcount_logs)")
	f.BoolVar(&runFlags.CPUProfile, "cpuprofile", false, "capture CPU profile data into the log folder")
	f.BoolVar(&runFlags.NoProgress, "noprogress", false, "do not draw a progress bar")
}

// handleArgs reads the configuration file, if any, then applies the
// flags that were given.
func handleArgs(cmd *cobra.Command) (*utils.Config, error) {

	config := utils.Defaults()
	if configFileName != "" {
		var err error
		config, err = utils.ReadConfig(configFileName)
		if err != nil {
			return nil, err
		}
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		if cp, ok := runFields[f.Name]; ok {
			cp(config, runFlags)
		}
	})

	return config, nil
}

// run counts all files described by config.  Failures of single files
// do not stop the run, they are reported in the stats table and in
// the returned error.
func run(ctx context.Context, config *utils.Config, stderr io.Writer) error {

	notes, err := config.Check()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.OutDir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", config.OutDir)
	}

	rd, err := utils.MakeRunDir(config)
	if err != nil {
		return err
	}
	defer rd.Close()

	logger, err := rd.Logger("sgcount.log", nil)
	if err != nil {
		return err
	}
	for _, n := range notes {
		logger.Print(n)
		fmt.Fprintln(stderr, n)
	}

	logger.Printf("Saving configuration...")
	if err := config.Save(filepath.Join(rd.Path, "config.json")); err != nil {
		return errors.Wrap(err, "saving configuration")
	}

	if config.CPUProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(rd.Path), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	if u, err := runner.MemoryUsed(); err == nil && u >= lowMemoryWarning {
		msg := fmt.Sprintf("Memory use is %.0f%%, file processing may be slow; consider --lowmem", u)
		logger.Print(msg)
		fmt.Fprintln(stderr, msg)
	}

	logger.Printf("Loading guides from %s...", config.GuideFileName)
	reg, warn, err := guides.LoadFile(config.GuideFileName)
	if err != nil {
		return err
	}
	for _, w := range warn {
		logger.Printf("Warning: %v", w)
		fmt.Fprintf(stderr, "Warning: %v\n", w)
	}
	logger.Printf("%d guides loaded", reg.Len())

	tasks, err := runner.Discover(config.SeqDir, config.Extension)
	if err != nil {
		return err
	}
	logger.Printf("Found %d files ending in %s in %s", len(tasks), config.Extension, config.SeqDir)
	fmt.Fprintf(stderr, "Running with %d mismatches allowed, minimal Phred score per base >= %d\n", config.Mismatches, config.Phred)
	fmt.Fprintf(stderr, "Processing %d files, results are written to %s\n", len(tasks), config.OutDir)

	gate, err := guides.NewQualityGate(config.Phred, config.PhredOffset)
	if err != nil {
		return err
	}
	params := &count.Params{
		Start:      config.Start,
		Length:     config.Length,
		Mismatches: config.Mismatches,
		Gate:       gate,
		LowMemory:  config.LowMemory,
	}
	if config.NonMatch {
		params.NonMatchDir = config.OutDir
	}

	var progress *runner.Progress
	if !config.NoProgress {
		progress = runner.NewProgress(len(tasks), stderr)
	}

	logger.Printf("Starting file scans with %d workers...", config.Workers)
	results := runner.Run(ctx, tasks, reg, params, runner.Options{
		Workers:  config.Workers,
		Gate:     runner.NewMemGate(config.MemLimit),
		Logger:   logger,
		Progress: progress,
		OnDone: func(res *count.Result) {
			if res.Err != nil {
				return
			}
			s := compile.FromResult(res, reg)
			if err := compile.WriteSample(config.OutDir, s); err != nil {
				res.Err = err
				logger.Print(err)
				return
			}
			logger.Print(s.Summary.String()[1:])
		},
	})
	progress.Wait()

	samples := make([]*compile.Sample, len(results))
	var nfail int
	for i, res := range results {
		samples[i] = compile.FromResult(res, reg)
		if res.Err != nil {
			nfail++
			logger.Printf("Failed: %v", res.Err)
			fmt.Fprintf(stderr, "Failed: %v\n", res.Err)
		}
	}

	logger.Printf("Starting compile...")
	hdr := compile.Header{Version: Version, Mismatches: config.Mismatches, Phred: config.Phred}
	if err := compile.WriteTables(config.OutDir, hdr, samples); err != nil {
		return err
	}

	if nfail > 0 {
		return errors.Errorf("%d of %d files could not be processed, see %s", nfail, len(tasks), compile.StatsFile)
	}
	logger.Printf("Done")
	fmt.Fprintf(stderr, "All reads have been compiled into %s\n", filepath.Join(config.OutDir, compile.MatrixFile))

	return nil
}
