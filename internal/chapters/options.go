package chapters

import (
	"strconv"
	"strings"
)

// minPrefixWidth keeps track numbers two digits wide for short books.
const minPrefixWidth = 2

// Options is the run-scoped configuration read by the resolver and the
// command builder. Construct it with NewOptions; it is never mutated
// afterwards and is safe to share between goroutines.
type Options struct {
	useTitleAsName  bool
	useTitleInMeta  bool
	sanitizeTitles  bool
	maxChapterIndex int
	outputExtension string
}

// Settings carries the user-facing switches used to build Options.
type Settings struct {
	UseTitleAsName  bool
	UseTitleInMeta  bool
	SanitizeTitles  bool
	OutputExtension string
}

// NewOptions builds Options for a run whose last chapter sits at position
// maxChapterIndex (chapter count minus one). Negative indexes are clamped
// to 0.
func NewOptions(maxChapterIndex int, s Settings) Options {
	if maxChapterIndex < 0 {
		maxChapterIndex = 0
	}
	return Options{
		useTitleAsName:  s.UseTitleAsName,
		useTitleInMeta:  s.UseTitleInMeta,
		sanitizeTitles:  s.SanitizeTitles,
		maxChapterIndex: maxChapterIndex,
		outputExtension: strings.TrimPrefix(strings.TrimSpace(s.OutputExtension), "."),
	}
}

func (o Options) UseTitleAsName() bool { return o.useTitleAsName }
func (o Options) UseTitleInMeta() bool { return o.useTitleInMeta }
func (o Options) SanitizeTitles() bool { return o.sanitizeTitles }
func (o Options) MaxChapterIndex() int { return o.maxChapterIndex }
func (o Options) OutputExtension() string { return o.outputExtension }

// TrackTotal is the total embedded in track=<n>/<total> tags.
func (o Options) TrackTotal() int {
	return o.maxChapterIndex + 1
}

// Width is the zero-padding width of the numeric filename prefix: the digit
// count of the largest printed number (max index + 1), and at least two.
func (o Options) Width() int {
	return max(minPrefixWidth, len(strconv.Itoa(o.TrackTotal())))
}

// Prefix formats the 1-based number of the chapter at position index.
func (o Options) Prefix(index int) string {
	n := strconv.Itoa(index + 1)
	if pad := o.Width() - len(n); pad > 0 {
		return strings.Repeat("0", pad) + n
	}
	return n
}
