package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// ExecOptions controls how a command is run.
type ExecOptions struct {
	// Stderr, when non-nil, receives ffmpeg's stderr as it is written in
	// addition to the captured copy.
	Stderr io.Writer
	// Detach lets the process finish on its own when ctx is cancelled
	// instead of being killed.
	Detach bool
}

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	// ExitCode is the process exit status, or -1 when it never ran or was
	// terminated by a signal.
	ExitCode int
	Err      error
}

// Success reports whether the process ran and exited with status 0.
func (r ExecResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Execute runs cmd and waits for it. Stderr is always captured; it is also
// copied to opts.Stderr when set.
func Execute(ctx context.Context, cmd Command, opts ExecOptions) ExecResult {
	runCtx := ctx
	if opts.Detach {
		runCtx = context.WithoutCancel(ctx)
	}
	proc := exec.CommandContext(runCtx, cmd.Program, cmd.Args...)

	var stderrBuf bytes.Buffer
	if opts.Stderr != nil {
		proc.Stderr = io.MultiWriter(&stderrBuf, opts.Stderr)
	} else {
		proc.Stderr = &stderrBuf
	}

	err := proc.Run()
	result := ExecResult{
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		ExitCode: 0,
		Err:      err,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
	}
	return result
}
