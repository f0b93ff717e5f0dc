package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Result represents the parsed chapter listing of one media file.
type Result struct {
	Chapters []Chapter `json:"chapters"`
	raw      []byte
}

// Chapter describes one chapter as reported by ffprobe. StartTime and
// EndTime are decimal seconds and are passed to ffmpeg verbatim.
type Chapter struct {
	ID        int               `json:"id"`
	TimeBase  string            `json:"time_base,omitempty"`
	Start     int64             `json:"start"`
	StartTime string            `json:"start_time"`
	End       int64             `json:"end"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Options controls how ffprobe is invoked.
type Options struct {
	// Binary is the ffprobe executable; empty means "ffprobe" from PATH.
	Binary string
	// Debug, when non-nil, receives the raw JSON printed by ffprobe.
	Debug io.Writer
}

// ReadChapters executes ffprobe against path and decodes its chapter listing.
func ReadChapters(ctx context.Context, opts Options, path string) (Result, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, &InvocationError{Binary: binary, Err: errors.New("empty input path")}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, Args(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		invErr := &InvocationError{
			Binary:   binary,
			Path:     path,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			invErr.ExitCode = exitErr.ExitCode()
		}
		return Result{}, invErr
	}

	output := stdout.Bytes()
	if offset, ok := firstInvalidUTF8(output); !ok {
		return Result{}, &EncodingError{Offset: offset}
	}

	if opts.Debug != nil {
		fmt.Fprintf(opts.Debug, "Chapters JSON:\n-----\n%s\n-----\n", output)
	}

	return ParseChapters(output)
}

// Args returns the ffprobe argument vector used to list chapters of path.
func Args(path string) []string {
	return []string{"-i", path, "-v", "error", "-print_format", "json", "-show_chapters"}
}

// ParseChapters converts raw ffprobe JSON output into a Result. Chapters keep
// ffprobe's output order, which callers treat as authoritative for
// numbering; ids may be sparse or 64-bit UIDs. A document without a
// chapters key yields an empty list.
func ParseChapters(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, &ParseError{Err: err}
	}
	if result.Chapters == nil {
		result.Chapters = []Chapter{}
	}
	result.raw = append([]byte(nil), data...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// Title returns the chapter's title tag verbatim. An absent or empty tag
// reports false; whitespace-only titles are left to the name sanitizer.
func (c Chapter) Title() (string, bool) {
	title, ok := c.Tags["title"]
	if !ok {
		for key, value := range c.Tags {
			if strings.EqualFold(key, "title") {
				title, ok = value, true
				break
			}
		}
	}
	if !ok || title == "" {
		return "", false
	}
	return title, true
}

// StartSeconds parses StartTime, returning NaN when it is malformed.
func (c Chapter) StartSeconds() float64 {
	return parseFloat(c.StartTime)
}

// EndSeconds parses EndTime, returning NaN when it is malformed.
func (c Chapter) EndSeconds() float64 {
	return parseFloat(c.EndTime)
}

// DurationSeconds returns EndTime-StartTime, or 0 when either is unusable.
func (c Chapter) DurationSeconds() float64 {
	start, end := c.StartSeconds(), c.EndSeconds()
	if math.IsNaN(start) || math.IsNaN(end) || end < start {
		return 0
	}
	return end - start
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return math.NaN()
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// firstInvalidUTF8 reports the byte offset of the first invalid sequence.
func firstInvalidUTF8(data []byte) (int, bool) {
	if utf8.Valid(data) {
		return 0, true
	}
	for offset := 0; offset < len(data); {
		r, size := utf8.DecodeRune(data[offset:])
		if r == utf8.RuneError && size == 1 {
			return offset, false
		}
		offset += size
	}
	return len(data), false
}
