package ffprobe

import (
	"fmt"

	"chapsplit/internal/failure"
)

// InvocationError reports that ffprobe could not be started or exited non-zero.
type InvocationError struct {
	Binary string
	Path   string
	// ExitCode is -1 when the process never ran.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("ffprobe %s: %v", e.Path, e.Err)
	if e.Path == "" {
		msg = fmt.Sprintf("ffprobe: %v", e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *InvocationError) Unwrap() []error {
	return compact(failure.ErrExternalTool, e.Err)
}

// EncodingError reports ffprobe output that is not valid UTF-8.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ffprobe output is not valid UTF-8 (first invalid byte at offset %d)", e.Offset)
}

func (e *EncodingError) Unwrap() error {
	return failure.ErrValidation
}

// ParseError reports malformed or unexpected JSON from ffprobe.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse ffprobe chapters: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return compact(failure.ErrValidation, e.Err)
}

func compact(errs ...error) []error {
	out := errs[:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
