package split

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"chapsplit/internal/chapters"
	"chapsplit/internal/ffmpeg"
	"chapsplit/internal/logging"
)

// Executor runs one prepared command.
type Executor interface {
	Execute(ctx context.Context, cmd ffmpeg.Command, opts ffmpeg.ExecOptions) ffmpeg.ExecResult
}

// ExecFunc adapts a function to Executor.
type ExecFunc func(ctx context.Context, cmd ffmpeg.Command, opts ffmpeg.ExecOptions) ffmpeg.ExecResult

// Execute calls f.
func (f ExecFunc) Execute(ctx context.Context, cmd ffmpeg.Command, opts ffmpeg.ExecOptions) ffmpeg.ExecResult {
	return f(ctx, cmd, opts)
}

// Job pairs a planned chapter with the command that produces it.
type Job struct {
	Item    chapters.WorkItem
	Command ffmpeg.Command
}

// NewJobs builds one Job per work item using BuildSplit.
func NewJobs(binary string, items []chapters.WorkItem, opts chapters.Options) []Job {
	jobs := make([]Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, Job{Item: item, Command: ffmpeg.BuildSplit(binary, item, opts)})
	}
	return jobs
}

// Progress observes a run. All calls come from the goroutine running Run.
type Progress interface {
	Start(total int)
	Done(Result)
	Finish()
}

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	// Jobs caps concurrent processes. Zero or negative means runtime.NumCPU.
	Jobs int
	// Exec defaults to ffmpeg.Execute.
	Exec   Executor
	Logger *slog.Logger
	// KillOnCancel terminates running processes when ctx is cancelled.
	// Otherwise they are allowed to finish.
	KillOnCancel bool
	// Stderr receives a live copy of every process's stderr when set.
	Stderr io.Writer
	// Progress is optional.
	Progress Progress
}

type indexedResult struct {
	index  int
	result Result
}

// Run executes every job and returns once all of them have finished or been
// skipped because ctx was cancelled. Results are in job order.
func (r *Runner) Run(ctx context.Context, jobs []Job) Report {
	started := time.Now()
	report := Report{Results: make([]Result, len(jobs))}
	if len(jobs) == 0 {
		return report
	}

	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "runner")
	exec := r.Exec
	if exec == nil {
		exec = ExecFunc(ffmpeg.Execute)
	}

	workers := r.workerCount(len(jobs))
	logger.Debug("starting workers",
		logging.Int("workers", workers),
		logging.Int("jobs", len(jobs)),
	)

	queue := make(chan int, len(jobs))
	for idx := range jobs {
		queue <- idx
	}
	close(queue)

	results := make(chan indexedResult, len(jobs))
	for w := 0; w < workers; w++ {
		go func() {
			for idx := range queue {
				results <- indexedResult{index: idx, result: r.runJob(ctx, exec, jobs[idx], logger)}
			}
		}()
	}

	if r.Progress != nil {
		r.Progress.Start(len(jobs))
	}
	for range jobs {
		res := <-results
		report.Results[res.index] = res.result
		if r.Progress != nil {
			r.Progress.Done(res.result)
		}
	}
	if r.Progress != nil {
		r.Progress.Finish()
	}
	report.Elapsed = time.Since(started)
	return report
}

func (r *Runner) workerCount(jobs int) int {
	workers := r.Jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func (r *Runner) runJob(ctx context.Context, exec Executor, job Job, logger *slog.Logger) Result {
	item := job.Item
	result := Result{Item: item, Command: job.Command}
	jobLogger := logging.WithContext(logging.WithChapter(ctx, item.Number()), logger).With(
		logging.Int(logging.FieldChapterID, item.ChapterID),
		logging.String(logging.FieldOutput, item.OutputPath),
	)

	if err := ctx.Err(); err != nil {
		result.Status = StatusCanceled
		result.Err = err
		jobLogger.Debug("chapter skipped; run canceled")
		return result
	}

	jobLogger.Debug("extracting chapter",
		logging.String("start", item.StartTime),
		logging.String("end", item.EndTime),
	)
	start := time.Now()
	out := exec.Execute(ctx, job.Command, ffmpeg.ExecOptions{Stderr: r.Stderr, Detach: !r.KillOnCancel})
	result.Duration = time.Since(start)
	result.ExitCode = out.ExitCode
	result.Stderr = out.Stderr

	if out.Success() {
		result.Status = StatusSucceeded
		if info, err := os.Stat(item.OutputPath); err == nil {
			result.Bytes = info.Size()
		}
		jobLogger.Info("chapter written",
			logging.Duration("elapsed", result.Duration),
			logging.Int64("bytes", result.Bytes),
		)
		return result
	}

	if ctxErr := ctx.Err(); ctxErr != nil && r.KillOnCancel {
		result.Status = StatusCanceled
		result.Err = ctxErr
		jobLogger.Warn("chapter interrupted", logging.String(logging.FieldEventType, "job_canceled"))
		return result
	}

	result.Status = StatusFailed
	result.Err = &JobError{
		Chapter:  item.Number(),
		Output:   item.OutputPath,
		ExitCode: out.ExitCode,
		Stderr:   out.Stderr,
		Err:      out.Err,
	}
	logging.ErrorWithContext(jobLogger, "chapter extraction failed", "job_failed",
		logging.Int("exit_code", out.ExitCode),
		logging.String("stderr", lastLine(out.Stderr)),
		logging.Error(out.Err),
		logging.String(logging.FieldErrorHint, "rerun with --debug to see the full ffmpeg output"),
	)
	return result
}
