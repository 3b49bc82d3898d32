// Copyright 2017, Kerby Shedden and the Muscato contributors.

package runner

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress draws a bar of processed files.  A nil Progress draws
// nothing.
type Progress struct {
	pbs *mpb.Progress
	bar *mpb.Bar
}

// NewProgress starts a bar for total files on w.
func NewProgress(total int, w io.Writer) *Progress {
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := pbs.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
			decor.Name("", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &Progress{pbs: pbs, bar: bar}
}

// Increment marks one more file done.
func (p *Progress) Increment() {
	if p == nil {
		return
	}
	p.bar.Increment()
}

// Wait waits for the bar to be drawn complete.  Files that were never
// counted are marked done first.
func (p *Progress) Wait() {
	if p == nil {
		return
	}
	if !p.bar.Completed() {
		p.bar.SetTotal(-1, true)
	}
	p.pbs.Wait()
}
