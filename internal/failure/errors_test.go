package failure_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"chapsplit/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrExternalTool, "split", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, failure.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"split", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failure.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "chapsplit failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, failure.ExitOK},
		{"no chapters", failure.Wrap(failure.ErrNotFound, "probe", "", "no chapters", nil), failure.ExitNoChapters},
		{"config", fmt.Errorf("load: %w", failure.ErrConfiguration), failure.ExitConfiguration},
		{"filesystem", failure.Wrap(failure.ErrFilesystem, "split", "mkdir", "", errors.New("denied")), failure.ExitFilesystem},
		{"tool", failure.Wrap(failure.ErrExternalTool, "split", "", "", nil), failure.ExitFailure},
		{"plain", errors.New("other"), failure.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
