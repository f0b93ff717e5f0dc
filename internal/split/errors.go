package split

import (
	"fmt"
	"strings"

	"chapsplit/internal/failure"
)

// JobError reports a chapter whose ffmpeg process could not be started or
// exited with a non-zero status.
type JobError struct {
	Chapter  int
	Output   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *JobError) Error() string {
	msg := fmt.Sprintf("chapter %d (%s): ffmpeg", e.Chapter, e.Output)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += fmt.Sprintf(" failed: %v", e.Err)
	}
	if stderr := lastLine(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *JobError) Unwrap() []error {
	if e.Err == nil {
		return []error{failure.ErrExternalTool}
	}
	return []error{failure.ErrExternalTool, e.Err}
}

// DirectoryError reports an output directory that could not be created or
// is not writable.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("output directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() []error {
	if e.Err == nil {
		return []error{failure.ErrFilesystem}
	}
	return []error{failure.ErrFilesystem, e.Err}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
