package chapters_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"chapsplit/internal/chapters"
	"chapsplit/internal/ffprobe"
	"chapsplit/internal/logging"
)

func titled(id int, title string) ffprobe.Chapter {
	return ffprobe.Chapter{
		ID:        id,
		StartTime: "0",
		EndTime:   "0",
		Tags:      map[string]string{"title": title},
	}
}

func defaultSettings() chapters.Settings {
	return chapters.Settings{UseTitleAsName: true, UseTitleInMeta: true, SanitizeTitles: true}
}

func TestResolveGoldenPath(t *testing.T) {
	opts := chapters.NewOptions(2, defaultSettings())
	r := chapters.NewResolver(filepath.FromSlash("in/path/baz.m4a"), filepath.FromSlash("out/path"), opts, logging.NewNop())

	got := r.Resolve(0, titled(0, "My Fancy Title"))
	want := filepath.FromSlash("out/path/01 - My Fancy Title.m4a")
	if got.Path != want {
		t.Fatalf("Resolve() = %q, want %q", got.Path, want)
	}
	if got.Fallback {
		t.Fatal("did not expect fallback")
	}
}

func TestResolveUsesTitleVerbatim(t *testing.T) {
	opts := chapters.NewOptions(9, defaultSettings())
	r := chapters.NewResolver("book.m4b", "out", opts, logging.NewNop())
	for _, title := range []string{"It All Started With a Simple BEEP", "Ünïcödé & Friends", "  spaced  "} {
		res := r.Resolve(4, titled(4, title))
		wantBase := title
		if strings.TrimSpace(title) != title {
			wantBase = strings.TrimSpace(title)
		}
		if res.BaseName != wantBase {
			t.Fatalf("base name %q, want %q", res.BaseName, wantBase)
		}
		if filepath.Base(res.Path) != "05 - "+wantBase+".m4b" {
			t.Fatalf("unexpected filename %q", filepath.Base(res.Path))
		}
	}
}

func TestResolveTitleVerbatimWithoutSanitizing(t *testing.T) {
	settings := defaultSettings()
	settings.SanitizeTitles = false
	opts := chapters.NewOptions(2, settings)
	r := chapters.NewResolver("book.m4a", "out", opts, logging.NewNop())

	res := r.Resolve(1, titled(1, "What? A <Title>"))
	if res.BaseName != "What? A <Title>" {
		t.Fatalf("expected title untouched, got %q", res.BaseName)
	}
}

func TestResolveSanitizesUnsafeTitles(t *testing.T) {
	opts := chapters.NewOptions(2, defaultSettings())
	r := chapters.NewResolver("book.m4a", "out", opts, logging.NewNop())

	res := r.Resolve(0, titled(0, "Part 1/2: Intro?"))
	if filepath.Base(res.Path) != "01 - Part 1-2- Intro.m4a" {
		t.Fatalf("unexpected sanitized name %q", filepath.Base(res.Path))
	}
	if filepath.Dir(res.Path) != "out" {
		t.Fatalf("title must not introduce directories, got %q", res.Path)
	}
}

func TestResolveFallsBackToStemWithWarning(t *testing.T) {
	for _, tags := range []map[string]string{nil, {"title": ""}, {"artist": "x"}, {"title": "..."}} {
		var buf bytes.Buffer
		logger, err := logging.New(logging.Options{Writer: &buf})
		if err != nil {
			t.Fatalf("logging.New: %v", err)
		}
		opts := chapters.NewOptions(2, defaultSettings())
		r := chapters.NewResolver(filepath.FromSlash("in/path/baz.m4a"), "out", opts, logger)

		res := r.Resolve(1, ffprobe.Chapter{ID: 1, Tags: tags})
		if res.Path != filepath.Join("out", "02 - baz.m4a") {
			t.Fatalf("tags %v: unexpected path %q", tags, res.Path)
		}
		if !res.Fallback {
			t.Fatalf("tags %v: expected fallback", tags)
		}
		if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "chapter=2") {
			t.Fatalf("tags %v: expected warning, got %q", tags, buf.String())
		}
	}
}

func TestResolvePrefixFollowsPosition(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	opts := chapters.NewOptions(2, defaultSettings())
	r := chapters.NewResolver("book.m4a", "out", opts, logger)

	if got := filepath.Base(r.Resolve(0, titled(1234567890123, "Intro")).Path); got != "01 - Intro.m4a" {
		t.Fatalf("unexpected filename %q", got)
	}
	res := r.Resolve(2, ffprobe.Chapter{ID: 77})
	if filepath.Base(res.Path) != "03 - book.m4a" {
		t.Fatalf("unexpected fallback filename %q", filepath.Base(res.Path))
	}
	if !strings.Contains(buf.String(), "chapter=3") || !strings.Contains(buf.String(), "chapter_id=77") {
		t.Fatalf("expected position and id in warning, got %q", buf.String())
	}
}

func TestResolveWhitespaceTitle(t *testing.T) {
	opts := chapters.NewOptions(0, defaultSettings())
	r := chapters.NewResolver("baz.m4a", "out", opts, logging.NewNop())
	res := r.Resolve(0, titled(0, "   "))
	if filepath.Base(res.Path) != "01 - baz.m4a" || !res.Fallback {
		t.Fatalf("sanitized blank title should fall back, got %q", res.Path)
	}

	settings := defaultSettings()
	settings.SanitizeTitles = false
	r = chapters.NewResolver("baz.m4a", "out", chapters.NewOptions(0, settings), logging.NewNop())
	if got := filepath.Base(r.Resolve(0, titled(0, "   ")).Path); got != "01 -    .m4a" {
		t.Fatalf("verbatim blank title, got %q", got)
	}
}

func TestResolveWithoutTitleNamingIgnoresTitle(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	settings := defaultSettings()
	settings.UseTitleAsName = false
	opts := chapters.NewOptions(2, settings)
	r := chapters.NewResolver("baz.m4a", "out", opts, logger)

	res := r.Resolve(2, titled(2, "Ignored"))
	if filepath.Base(res.Path) != "03 - baz.m4a" {
		t.Fatalf("unexpected filename %q", filepath.Base(res.Path))
	}
	if res.Fallback {
		t.Fatal("stem is the chosen name, not a fallback")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no warning, got %q", buf.String())
	}
}

func TestResolveExtensionOverride(t *testing.T) {
	for _, ext := range []string{"mka", ".mka"} {
		settings := defaultSettings()
		settings.OutputExtension = ext
		opts := chapters.NewOptions(0, settings)
		r := chapters.NewResolver("movie.mkv", "out", opts, logging.NewNop())
		if got := filepath.Base(r.Resolve(0, titled(0, "Audio")).Path); got != "01 - Audio.mka" {
			t.Fatalf("override %q: got %q", ext, got)
		}
	}
}

func TestResolveInputWithoutExtension(t *testing.T) {
	opts := chapters.NewOptions(0, defaultSettings())
	r := chapters.NewResolver("recording", "out", opts, logging.NewNop())
	if got := filepath.Base(r.Resolve(0, titled(0, "Take")).Path); got != "01 - Take" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestPrefixWidth(t *testing.T) {
	tests := []struct {
		maxIndex int
		width    int
		first    string
		last     string
	}{
		{0, 2, "01", "01"},
		{1, 2, "01", "02"},
		{2, 2, "01", "03"},
		{11, 2, "01", "12"},
		{98, 2, "01", "99"},
		{99, 3, "001", "100"},
		{1200, 4, "0001", "1201"},
	}
	for _, tt := range tests {
		opts := chapters.NewOptions(tt.maxIndex, defaultSettings())
		if opts.Width() != tt.width {
			t.Fatalf("max %d: width %d, want %d", tt.maxIndex, opts.Width(), tt.width)
		}
		if got := opts.Prefix(0); got != tt.first {
			t.Fatalf("max %d: first prefix %q, want %q", tt.maxIndex, got, tt.first)
		}
		if got := opts.Prefix(tt.maxIndex); got != tt.last {
			t.Fatalf("max %d: last prefix %q, want %q", tt.maxIndex, got, tt.last)
		}
		if len(opts.Prefix(0)) != len(opts.Prefix(tt.maxIndex)) {
			t.Fatalf("max %d: prefix width must be constant", tt.maxIndex)
		}
	}
}

func TestNewOptionsClampsAndTrims(t *testing.T) {
	opts := chapters.NewOptions(-1, chapters.Settings{OutputExtension: " .flac "})
	if opts.MaxChapterIndex() != 0 || opts.TrackTotal() != 1 {
		t.Fatalf("expected clamp to 0, got %d", opts.MaxChapterIndex())
	}
	if opts.OutputExtension() != "flac" {
		t.Fatalf("unexpected extension %q", opts.OutputExtension())
	}
}
