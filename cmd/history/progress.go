package main

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// progressReporter renders provider download progress on a terminal bar.
// The bar is created on the first callback, when the total is known.
type progressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out}
}

func (p *progressReporter) OnProgress(current float64, total float64, message string) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions64(int64(total),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(message),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
	}

	if int64(total) != p.bar.GetMax64() {
		p.bar.ChangeMax64(int64(total))
	}

	p.bar.Describe(message)
	_ = p.bar.Set64(int64(current))
}

// Finish completes the bar if one was started.
func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
