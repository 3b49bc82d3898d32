// Copyright 2017, Kerby Shedden and the Muscato contributors.
//
// sgcount counts, for every read file in a folder, how many reads
// carry each of a set of guide sequences at a fixed position.
//
// A typical invocation is:
//
// sgcount run --seqdir=reads --guides=library.csv --out=counts --start=0 --length=20 --mismatches=1 --phred=30
//
// The guide file holds one name,sequence row per guide.  For each
// read the window of the given length at the given start is compared
// to the guides.  Windows holding an N or a base below the quality
// threshold are skipped.  A window equal to a guide is counted as an
// exact match; otherwise, when mismatches are allowed, it is counted
// for the single guide it differs from in at most that many
// positions.  Windows close to two or more guides are not counted.
//
// Parameters can also be given in a JSON or TOML file:
//
// sgcount run --config=run.toml
//
// Flags given on the command line take precedence over the file.  See
// utils/config.go for the full set of parameters.
//
// The output folder receives one <sample>_reads.csv table per read
// file, the guide by sample table compiled.csv and the run statistics
// compiled_stats.csv.  Logs and the effective configuration are
// written to sgcount_logs/<id> in the output folder.
//
// sgcount compile rebuilds the two compiled tables from the per-file
// tables in a folder, and sgcount gendat writes a small simulated
// data set.
package main

func main() {
	Execute()
}
