// Copyright 2017, Kerby Shedden and the Muscato contributors.

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kshedden/sgcount/guides"
	"github.com/pkg/errors"
)

func writeFile(t *testing.T, fn, s string) {
	t.Helper()
	if err := os.WriteFile(fn, []byte(s), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {

	dir := t.TempDir()

	jn := filepath.Join(dir, "config.json")
	writeFile(t, jn, `{"SeqDir": "reads", "Mismatches": 0, "LowMemory": true}`)
	c, err := ReadConfig(jn)
	if err != nil {
		t.Fatal(err)
	}
	if c.SeqDir != "reads" || c.Mismatches != 0 || !c.LowMemory {
		t.Errorf("json values not applied: %+v", c)
	}
	if c.Length != 20 || c.Phred != 30 || c.Extension != ".fastq.gz" {
		t.Errorf("defaults lost: %+v", c)
	}

	tn := filepath.Join(dir, "config.toml")
	writeFile(t, tn, "SeqDir = \"reads\"\nStart = 3\nLength = 19\nPhred = 20\n")
	c, err = ReadConfig(tn)
	if err != nil {
		t.Fatal(err)
	}
	if c.Start != 3 || c.Length != 19 || c.Phred != 20 || c.Mismatches != 1 {
		t.Errorf("toml values not applied: %+v", c)
	}

	if _, err := ReadConfig(filepath.Join(dir, "none.json")); err == nil {
		t.Errorf("missing config file did not fail")
	}
}

func TestCheck(t *testing.T) {

	dir := t.TempDir()
	gn := filepath.Join(dir, "guides.csv")
	writeFile(t, gn, "a,ACGT\n")

	base := func() *Config {
		c := Defaults()
		c.SeqDir = dir
		c.GuideFileName = gn
		c.OutDir = filepath.Join(dir, "out")
		return c
	}

	c := base()
	notes, err := c.Check()
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers < 1 || len(notes) == 0 {
		t.Errorf("Workers default not applied: %d %v", c.Workers, notes)
	}
	if c.LogDir != filepath.Join(dir, "out", "sgcount_logs") {
		t.Errorf("LogDir = %s", c.LogDir)
	}

	type test struct {
		name   string
		modify func(*Config)
		want   error
	}
	tests := []test{
		{"no seqdir", func(c *Config) { c.SeqDir = "" }, guides.ErrConfig},
		{"no guides", func(c *Config) { c.GuideFileName = "" }, guides.ErrConfig},
		{"no outdir", func(c *Config) { c.OutDir = "" }, guides.ErrConfig},
		{"negative start", func(c *Config) { c.Start = -1 }, guides.ErrConfig},
		{"zero length", func(c *Config) { c.Length = 0 }, guides.ErrConfig},
		{"too many mismatches", func(c *Config) { c.Mismatches = 21 }, guides.ErrConfig},
		{"bad phred", func(c *Config) { c.Phred = 100 }, guides.ErrConfig},
		{"missing seqdir", func(c *Config) { c.SeqDir = filepath.Join(dir, "nope") }, guides.ErrSourceNotFound},
		{"missing guides", func(c *Config) { c.GuideFileName = filepath.Join(dir, "nope.csv") }, guides.ErrSourceNotFound},
	}
	for _, tc := range tests {
		c := base()
		tc.modify(c)
		if _, err := c.Check(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}
