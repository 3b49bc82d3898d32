// Copyright 2017, Kerby Shedden and the Muscato contributors.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kshedden/sgcount/compile"
	"github.com/spf13/cobra"
)

var (
	compileMismatches int
	compilePhred      int
)

var compileCmd = &cobra.Command{
	Use:   "compile <folder>",
	Short: "Rebuild the compiled tables from the per-file tables in a folder",
	Long: `Rebuild compiled.csv and compiled_stats.csv from the <sample>_reads.csv
tables in a folder, without reading the sequence files again.  The
mismatch and quality settings are only recorded in the stats header.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		samples, err := compile.FromDir(dir)
		if err != nil {
			return err
		}
		hdr := compile.Header{Version: Version, Mismatches: compileMismatches, Phred: compilePhred}
		if err := compile.WriteTables(dir, hdr, samples); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d samples compiled into %s\n", len(samples), filepath.Join(dir, compile.MatrixFile))
		return nil
	},
}

func init() {
	compileCmd.Flags().IntVarP(&compileMismatches, "mismatches", "m", 1, "mismatches allowed in the run")
	compileCmd.Flags().IntVarP(&compilePhred, "phred", "q", 30, "quality threshold of the run")
}
