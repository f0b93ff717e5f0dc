package history

import "time"

// Status summarizes how a run ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is one recorded split invocation.
type Run struct {
	ID           string    `json:"id"`
	InputPath    string    `json:"input_path"`
	OutputDir    string    `json:"output_dir"`
	Status       Status    `json:"status"`
	ChapterCount int       `json:"chapter_count"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Canceled     int       `json:"canceled"`
	BytesWritten int64     `json:"bytes_written"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	// Chapters is only populated by Get.
	Chapters []Chapter `json:"chapters,omitempty"`
}

// Duration is the wall time between start and finish.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Chapter is the outcome of one chapter job within a run.
type Chapter struct {
	Number       int    `json:"number"`
	Title        string `json:"title,omitempty"`
	OutputPath   string `json:"output_path"`
	Status       string `json:"status"`
	ExitCode     int    `json:"exit_code"`
	BytesWritten int64  `json:"bytes_written"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// StatusFor derives the run status from its job counts.
func StatusFor(succeeded, failed, canceled int) Status {
	switch {
	case canceled > 0:
		return StatusCanceled
	case failed > 0 && succeeded > 0:
		return StatusPartial
	case failed > 0:
		return StatusFailed
	default:
		return StatusSucceeded
	}
}
