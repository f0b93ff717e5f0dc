package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chapsplit/internal/chapters"
	"chapsplit/internal/config"
	"chapsplit/internal/failure"
	"chapsplit/internal/ffprobe"
	"chapsplit/internal/history"
	"chapsplit/internal/logging"
	"chapsplit/internal/preflight"
)

// Mode selects how far a pipeline run goes.
type Mode int

const (
	// ModeSplit extracts every chapter.
	ModeSplit Mode = iota
	// ModeList probes and returns the chapter list only.
	ModeList
	// ModeDryRun plans jobs and returns their commands without running them.
	ModeDryRun
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeDryRun:
		return "dry-run"
	default:
		return "split"
	}
}

// Request describes one invocation.
type Request struct {
	InputPath string
	// OutputDir defaults to the input's directory.
	OutputDir string
	Mode      Mode
	Settings  chapters.Settings
	// Jobs overrides Pipeline.Jobs when positive.
	Jobs int
	// Debug, when set, receives the raw ffprobe output and live ffmpeg stderr.
	Debug io.Writer
}

// Summary is what a pipeline run produced.
type Summary struct {
	RunID     string
	InputPath string
	OutputDir string
	Mode      Mode
	Chapters  []ffprobe.Chapter
	Items     []chapters.WorkItem
	Jobs      []Job
	Report    Report
}

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, run history.Run) error
}

// Pipeline wires probing, planning, and execution together.
type Pipeline struct {
	FFprobe      string
	FFmpeg       string
	Jobs         int
	KillOnCancel bool
	Logger       *slog.Logger
	// Exec defaults to ffmpeg.Execute.
	Exec Executor
	// Recorder is optional; a nil Recorder disables the journal.
	Recorder Recorder
	// Progress is optional.
	Progress Progress
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewPipeline builds a Pipeline from cfg.
func NewPipeline(cfg *config.Config, logger *slog.Logger, recorder Recorder) *Pipeline {
	return &Pipeline{
		FFprobe:      cfg.Tools.FFprobe,
		FFmpeg:       cfg.Tools.FFmpeg,
		Jobs:         cfg.Split.Jobs,
		KillOnCancel: cfg.Split.KillOnCancel,
		Logger:       logger,
		Recorder:     recorder,
	}
}

// Run executes req. In split mode the returned error joins every failed
// job; the Summary is populated as far as the run got.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "pipeline"))

	summary := Summary{RunID: runID, InputPath: req.InputPath, Mode: req.Mode}
	if strings.TrimSpace(req.InputPath) == "" {
		return summary, fmt.Errorf("%w: no input file given", failure.ErrConfiguration)
	}

	outputDir := req.OutputDir
	if strings.TrimSpace(outputDir) == "" {
		outputDir = filepath.Dir(req.InputPath)
	}
	summary.OutputDir = outputDir

	logger.Debug("probing chapters",
		logging.String("input", req.InputPath),
		logging.String("mode", req.Mode.String()),
	)
	probe, err := ffprobe.ReadChapters(ctx, ffprobe.Options{Binary: p.FFprobe, Debug: req.Debug}, req.InputPath)
	if err != nil {
		return summary, err
	}
	summary.Chapters = probe.Chapters
	logger.Debug("chapters probed", logging.Int("count", len(probe.Chapters)))

	if req.Mode == ModeList {
		return summary, nil
	}
	if len(probe.Chapters) == 0 {
		return summary, chapters.ErrNoChapters
	}

	opts := chapters.OptionsFor(probe, req.Settings)
	items, err := chapters.Plan(req.InputPath, outputDir, probe.Chapters, opts, logging.WithContext(ctx, p.Logger))
	if err != nil {
		return summary, err
	}
	summary.Items = items
	summary.Jobs = NewJobs(p.FFmpeg, items, opts)

	if req.Mode == ModeDryRun {
		return summary, nil
	}

	if err := prepareOutputDir(outputDir); err != nil {
		return summary, err
	}
	lock, err := LockDirectory(outputDir)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output directory lock", logging.Error(err))
		}
	}()

	jobs := p.Jobs
	if req.Jobs > 0 {
		jobs = req.Jobs
	}
	runner := &Runner{
		Jobs:         jobs,
		Exec:         p.Exec,
		Logger:       p.Logger,
		KillOnCancel: p.KillOnCancel,
		Stderr:       req.Debug,
		Progress:     p.Progress,
	}
	logger.Info("splitting chapters",
		logging.String("input", req.InputPath),
		logging.String("output_dir", outputDir),
		logging.Int("chapters", len(summary.Jobs)),
	)
	summary.Report = runner.Run(ctx, summary.Jobs)

	runErr := summary.Report.Err()
	if ctxErr := ctx.Err(); ctxErr != nil {
		runErr = errors.Join(runErr, ctxErr)
	}
	p.record(ctx, logger, summary, started, now(), runErr)

	succeeded, failed, canceled := summary.Report.Counts()
	logger.Info("split finished",
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed),
		logging.Int("canceled", canceled),
		logging.Duration("elapsed", summary.Report.Elapsed),
	)
	return summary, runErr
}

func prepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &DirectoryError{Path: dir, Err: err}
	}
	if check := preflight.CheckDirectoryAccess("Output directory", dir); !check.Passed {
		return &DirectoryError{Path: dir, Err: errors.New(check.Detail)}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, summary Summary, started, finished time.Time, runErr error) {
	if p.Recorder == nil {
		return
	}
	succeeded, failed, canceled := summary.Report.Counts()
	run := history.Run{
		ID:           summary.RunID,
		InputPath:    summary.InputPath,
		OutputDir:    summary.OutputDir,
		Status:       history.StatusFor(succeeded, failed, canceled),
		ChapterCount: len(summary.Report.Results),
		Succeeded:    succeeded,
		Failed:       failed,
		Canceled:     canceled,
		BytesWritten: summary.Report.BytesWritten(),
		StartedAt:    started,
		FinishedAt:   finished,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	for _, res := range summary.Report.Results {
		ch := history.Chapter{
			Number:       res.Item.Number(),
			Title:        res.Item.Title,
			OutputPath:   res.Item.OutputPath,
			Status:       string(res.Status),
			ExitCode:     res.ExitCode,
			BytesWritten: res.Bytes,
		}
		if res.Err != nil {
			ch.ErrorMessage = res.Err.Error()
		}
		run.Chapters = append(run.Chapters, ch)
	}

	// The run may have been interrupted; the journal entry should still land.
	if err := p.Recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from chapsplit history"),
			logging.String(logging.FieldErrorHint, "check history.path in the config"),
		)
	}
}

// CommandLines renders the dry-run view of jobs.
func CommandLines(jobs []Job) []string {
	lines := make([]string, 0, len(jobs))
	for _, job := range jobs {
		lines = append(lines, job.Command.String())
	}
	return lines
}
