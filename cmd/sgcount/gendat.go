// Copyright 2017, Kerby Shedden and the Muscato contributors.

package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// Generate simple data sets for testing.
//
// The guide file holds NumGuide random guides, at least three
// substitutions apart, plus the pair amb_a and amb_b that differ in
// one position.  Each read file holds reads whose window is, in
// turn, an exact guide copy, a guide copy with one substitution, a
// window one substitution from both amb_a and amb_b, a guide copy
// containing an N, a guide copy with one low quality base, or random
// sequence.

type genOptions struct {
	Dir      string
	NumGuide int
	NumFile  int
	NumRead  int
	ReadLen  int
	Start    int
	Length   int
	Seed     int64
}

// genTally is the number of reads of each kind written to one file.
type genTally struct {
	Name     string
	Total    int
	Exact    int
	Mismatch int

	// Expected count of each guide, and the part of it from
	// exact copies
	Counts      map[string]int
	ExactCounts map[string]int
}

var genOpts genOptions

var gendatCmd = &cobra.Command{
	Use:   "gendat",
	Short: "Write a simulated guide file and read files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tallies, err := gendat(genOpts)
		if err != nil {
			return err
		}
		for _, t := range tallies {
			fmt.Printf("%s: %d reads, %d exact, %d with one mismatch\n", t.Name, t.Total, t.Exact, t.Mismatch)
		}
		return nil
	},
}

func init() {
	f := gendatCmd.Flags()
	f.StringVarP(&genOpts.Dir, "out", "o", "simdata", "output folder")
	f.IntVar(&genOpts.NumGuide, "guides", 100, "number of guides")
	f.IntVar(&genOpts.NumFile, "files", 3, "number of read files")
	f.IntVar(&genOpts.NumRead, "reads", 10000, "reads per file")
	f.IntVar(&genOpts.ReadLen, "readlen", 50, "read length")
	f.IntVar(&genOpts.Start, "start", 0, "start of the guide window")
	f.IntVar(&genOpts.Length, "length", 20, "guide length")
	f.Int64Var(&genOpts.Seed, "seed", 1, "random seed")
}

var bases = []byte("ACGT")

func randomSeq(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = bases[rng.Intn(4)]
	}
	return b
}

// substitute changes position j of x to a different base.
func substitute(rng *rand.Rand, x []byte, j int) {
	for {
		c := bases[rng.Intn(4)]
		if c != x[j] {
			x[j] = c
			return
		}
	}
}

func distance(x, y []byte) int {
	var d int
	for i := range x {
		if x[i] != y[i] {
			d++
		}
	}
	return d
}

func generateGuides(rng *rand.Rand, opts genOptions) ([]string, [][]byte) {

	var names []string
	var seqs [][]byte

	// Random guides are practically always far apart, check anyway.
	far := func(x []byte) bool {
		for _, y := range seqs {
			if distance(x, y) < 3 {
				return false
			}
		}
		return true
	}

	for len(seqs) < opts.NumGuide {
		if x := randomSeq(rng, opts.Length); far(x) {
			names = append(names, fmt.Sprintf("guide_%d", len(seqs)))
			seqs = append(seqs, x)
		}
	}

	for {
		a := randomSeq(rng, opts.Length)
		b := append([]byte(nil), a...)
		substitute(rng, b, 0)
		if far(a) && far(b) {
			names = append(names, "amb_a", "amb_b")
			seqs = append(seqs, a, b)
			break
		}
	}

	return names, seqs
}

func writeGuides(fname string, names []string, seqs [][]byte) error {

	out, err := xopen.Wopen(fname)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "name,sequence\n")
	for i := range names {
		fmt.Fprintf(out, "%s,%s\n", names[i], seqs[i])
	}
	return out.Close()
}

func writeReads(rng *rand.Rand, opts genOptions, name string, names []string, seqs [][]byte) (*genTally, error) {

	fname := filepath.Join(opts.Dir, name+".fastq.gz")
	out, err := xopen.Wopen(fname)
	if err != nil {
		return nil, err
	}

	tally := &genTally{
		Name:        name,
		Counts:      make(map[string]int),
		ExactCounts: make(map[string]int),
	}
	ng := opts.NumGuide
	q1, q2 := opts.Start, opts.Start+opts.Length

	for i := 0; i < opts.NumRead; i++ {

		s := randomSeq(rng, opts.ReadLen)
		q := make([]byte, opts.ReadLen)
		for j := range q {
			q[j] = 'I'
		}
		win := s[q1:q2]
		g := rng.Intn(ng)

		switch i % 6 {
		case 0:
			// Exact, occasionally one of the near pair
			if rng.Intn(10) == 0 {
				g = ng + rng.Intn(2)
			}
			copy(win, seqs[g])
			tally.Exact++
			tally.Counts[names[g]]++
			tally.ExactCounts[names[g]]++
		case 1:
			copy(win, seqs[g])
			substitute(rng, win, rng.Intn(opts.Length))
			tally.Mismatch++
			tally.Counts[names[g]]++
		case 2:
			// Differs from both amb_a and amb_b at position 0
			copy(win, seqs[ng])
			for win[0] == seqs[ng][0] || win[0] == seqs[ng+1][0] {
				win[0] = bases[rng.Intn(4)]
			}
		case 3:
			copy(win, seqs[g])
			win[rng.Intn(opts.Length)] = 'N'
		case 4:
			copy(win, seqs[g])
			q[q1+rng.Intn(opts.Length)] = '#'
		}
		tally.Total++

		rec := &fastx.Record{
			ID:   []byte(fmt.Sprintf("read_%d", i)),
			Name: []byte(fmt.Sprintf("read_%d", i)),
			Seq:  &seq.Seq{Alphabet: seq.DNAredundant, Seq: s, Qual: q},
		}
		rec.FormatToWriter(out, 0)
	}

	return tally, out.Close()
}

// gendat writes the guide file guides.csv and the read files
// sample_<k>.fastq.gz into opts.Dir.
func gendat(opts genOptions) ([]*genTally, error) {

	if opts.NumGuide < 1 || opts.Length < 3 || opts.Start < 0 || opts.ReadLen < opts.Start+opts.Length {
		return nil, errors.Errorf("invalid simulation settings %+v", opts)
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	names, seqs := generateGuides(rng, opts)
	if err := writeGuides(filepath.Join(opts.Dir, "guides.csv"), names, seqs); err != nil {
		return nil, errors.Wrap(err, "writing guides")
	}

	var tallies []*genTally
	for k := 0; k < opts.NumFile; k++ {
		t, err := writeReads(rng, opts, fmt.Sprintf("sample_%d", k), names, seqs)
		if err != nil {
			return nil, errors.Wrapf(err, "writing sample_%d", k)
		}
		tallies = append(tallies, t)
	}

	return tallies, nil
}
