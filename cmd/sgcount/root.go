// Copyright 2017, Kerby Shedden and the Muscato contributors.

package main

import (
	"log"

	"github.com/spf13/cobra"
)

// Version is reported by --version and in the stats table.
const Version = "1.0.0"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sgcount",
	Short:         "Count guide sequences in sequencing reads",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	rootCmd.AddCommand(runCmd, compileCmd, gendatCmd)
}
