package split

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"chapsplit/internal/chapters"
	"chapsplit/internal/ffmpeg"
)

// Status is the outcome of one job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Result records how one job ended.
type Result struct {
	Item     chapters.WorkItem
	Command  ffmpeg.Command
	Status   Status
	ExitCode int
	Stderr   string
	Duration time.Duration
	// Bytes is the size of the written output, zero unless succeeded.
	Bytes int64
	Err   error
}

// Report aggregates job results in chapter order.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Counts returns the number of succeeded, failed, and canceled jobs.
func (r Report) Counts() (succeeded, failed, canceled int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusCanceled:
			canceled++
		}
	}
	return succeeded, failed, canceled
}

// BytesWritten sums the sizes of all written outputs.
func (r Report) BytesWritten() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.Bytes
	}
	return total
}

// Err joins the errors of all failed jobs, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Status == StatusFailed && res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Summary renders a one-line description of the run.
func (r Report) Summary() string {
	succeeded, failed, canceled := r.Counts()
	line := fmt.Sprintf("%d of %d chapters written (%s in %s)",
		succeeded, len(r.Results), humanize.Bytes(uint64(r.BytesWritten())), r.Elapsed.Round(time.Millisecond))
	if failed > 0 {
		line += fmt.Sprintf(", %d failed", failed)
	}
	if canceled > 0 {
		line += fmt.Sprintf(", %d canceled", canceled)
	}
	return line
}
