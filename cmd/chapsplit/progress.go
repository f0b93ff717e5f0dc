package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"chapsplit/internal/split"
)

// barProgress draws a chapter counter on an interactive stderr.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{w: w}
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("splitting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) Done(res split.Result) {
	if p.bar == nil {
		return
	}
	if res.Status == split.StatusFailed {
		p.bar.Describe("splitting (failures)")
	}
	_ = p.bar.Add(1)
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// progressFor returns a progress bar when w is a terminal and the log
// output would not interleave with it.
func progressFor(w io.Writer, debug bool) split.Progress {
	if debug || !shouldColorize(w) {
		return nil
	}
	return newBarProgress(w)
}
