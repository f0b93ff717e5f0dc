package chapters

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"chapsplit/internal/ffprobe"
	"chapsplit/internal/logging"
	"chapsplit/internal/textutil"
)

// Resolution is the outcome of resolving one chapter's output path.
type Resolution struct {
	Path string
	// BaseName is the name portion between the prefix and the extension.
	BaseName string
	// Fallback reports that the input stem replaced a missing or unusable title.
	Fallback bool
}

// Resolver computes output paths for the chapters of one input file.
type Resolver struct {
	inputPath string
	outputDir string
	opts      Options
	logger    *slog.Logger
}

// NewResolver returns a resolver for inputPath writing into outputDir.
func NewResolver(inputPath, outputDir string, opts Options, logger *slog.Logger) *Resolver {
	return &Resolver{
		inputPath: inputPath,
		outputDir: outputDir,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "naming"),
	}
}

// Resolve returns the output path "<prefix> - <name>.<ext>" for ch, the
// chapter at position index. The prefix follows index, never ch.ID.
func (r *Resolver) Resolve(index int, ch ffprobe.Chapter) Resolution {
	stem, inputExt := splitName(r.inputPath)

	name := stem
	fallback := false
	chapterAttrs := []logging.Attr{
		logging.Int(logging.FieldChapter, index+1),
		logging.Int(logging.FieldChapterID, ch.ID),
	}
	if r.opts.UseTitleAsName() {
		title, ok := ch.Title()
		switch {
		case !ok:
			fallback = true
			logging.WarnWithContext(r.logger, "chapter has no title; using input filename", "title_missing",
				append(chapterAttrs,
					logging.String("fallback_name", stem),
					logging.String(logging.FieldImpact, "output named after input file"),
					logging.String(logging.FieldErrorHint, "add chapter titles or pass --no-title-names"),
				)...,
			)
		case r.opts.SanitizeTitles():
			cleaned := textutil.SanitizeFileName(title)
			if cleaned == "" {
				fallback = true
				logging.WarnWithContext(r.logger, "chapter title has no usable characters; using input filename", "title_unusable",
					append(chapterAttrs,
						logging.String("title", title),
						logging.String("fallback_name", stem),
						logging.String(logging.FieldImpact, "output named after input file"),
					)...,
				)
				break
			}
			if cleaned != title {
				r.logger.Debug("sanitized chapter title", logging.Args(append(chapterAttrs,
					logging.String("title", title),
					logging.String("name", cleaned),
				)...)...)
			}
			name = cleaned
		default:
			name = title
		}
	}

	ext := r.opts.OutputExtension()
	if ext == "" {
		ext = inputExt
	}

	filename := fmt.Sprintf("%s - %s", r.opts.Prefix(index), name)
	if ext != "" {
		filename += "." + ext
	}
	return Resolution{
		Path:     filepath.Join(r.outputDir, filename),
		BaseName: name,
		Fallback: fallback,
	}
}

// splitName returns the file stem and extension (without dot) of path.
func splitName(path string) (string, string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// Dotfiles such as ".m4a" have no extension, only a name.
		return base, ""
	}
	return stem, strings.TrimPrefix(ext, ".")
}
