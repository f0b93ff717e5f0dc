package chapters

import (
	"fmt"
	"log/slog"

	"chapsplit/internal/failure"
	"chapsplit/internal/ffprobe"
)

// ErrNoChapters reports an input without chapter metadata.
var ErrNoChapters = fmt.Errorf("%w: input has no chapter metadata", failure.ErrNotFound)

// WorkItem is one chapter paired with its destination. It owns copies of
// the chapter fields it needs so it can outlive the probe result.
type WorkItem struct {
	// Index is the ordinal position in probe order and drives numbering.
	Index int
	// ChapterID is ffprobe's id, which may be sparse or a 64-bit UID.
	ChapterID int
	StartTime string
	EndTime   string
	// Title is the raw title tag, empty when absent.
	Title      string
	InputPath  string
	OutputPath string
}

// Number is the 1-based chapter position used in prefixes, track tags and
// logs.
func (w WorkItem) Number() int {
	return w.Index + 1
}

// Plan builds one WorkItem per chapter, numbered by position. It fails with
// ErrNoChapters when the list is empty.
func Plan(inputPath, outputDir string, list []ffprobe.Chapter, opts Options, logger *slog.Logger) ([]WorkItem, error) {
	if len(list) == 0 {
		return nil, ErrNoChapters
	}

	resolver := NewResolver(inputPath, outputDir, opts, logger)
	items := make([]WorkItem, 0, len(list))
	for idx, ch := range list {
		res := resolver.Resolve(idx, ch)
		title, _ := ch.Title()
		items = append(items, WorkItem{
			Index:      idx,
			ChapterID:  ch.ID,
			StartTime:  ch.StartTime,
			EndTime:    ch.EndTime,
			Title:      title,
			InputPath:  inputPath,
			OutputPath: res.Path,
		})
	}
	return items, nil
}

// OptionsFor returns the Options for a probed chapter list. Width and track
// total follow the chapter count, never the ids.
func OptionsFor(result ffprobe.Result, s Settings) Options {
	return NewOptions(len(result.Chapters)-1, s)
}
