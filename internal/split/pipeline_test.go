package split_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"chapsplit/internal/chapters"
	"chapsplit/internal/config"
	"chapsplit/internal/failure"
	"chapsplit/internal/ffmpeg"
	"chapsplit/internal/history"
	"chapsplit/internal/logging"
	"chapsplit/internal/split"
	"chapsplit/internal/testsupport"
)

const beepJSON = `{
    "chapters": [
        {"id": 0, "time_base": "1/44100", "start": 0, "start_time": "0.000000", "end": 882000, "end_time": "20.000000", "tags": {"title": "It All Started With a Simple BEEP"}},
        {"id": 1, "time_base": "1/44100", "start": 882000, "start_time": "20.000000", "end": 1764000, "end_time": "40.000000", "tags": {"title": "All You Can BEEP Buffee"}},
        {"id": 2, "time_base": "1/44100", "start": 1764000, "start_time": "40.000000", "end": 2646000, "end_time": "60.000000", "tags": {"title": "The Final Beep"}}
    ]
}`

type memoryRecorder struct {
	mu   sync.Mutex
	runs []history.Run
	err  error
}

func (m *memoryRecorder) RecordRun(_ context.Context, run history.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

func stubProbe(t *testing.T, output string) string {
	t.Helper()
	fixture := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "probe.json"), output)
	return testsupport.StubBinary(t, "ffprobe", `cat "`+fixture+`"`)
}

func settings() chapters.Settings {
	return chapters.Settings{UseTitleAsName: true, UseTitleInMeta: true, SanitizeTitles: true}
}

func newPipeline(t *testing.T, probe string, recorder split.Recorder) *split.Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Tools.FFprobe = probe
	p := split.NewPipeline(&cfg, logging.NewNop(), recorder)
	p.Exec = split.ExecFunc(func(_ context.Context, cmd ffmpeg.Command, _ ffmpeg.ExecOptions) ffmpeg.ExecResult {
		return writeOutput(cmd)
	})
	return p
}

func TestPipelineSplitsEveryChapter(t *testing.T) {
	recorder := &memoryRecorder{}
	p := newPipeline(t, stubProbe(t, beepJSON), recorder)
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	summary, err := p.Run(context.Background(), split.Request{
		InputPath: "/media/beep.m4a",
		OutputDir: outDir,
		Settings:  settings(),
		Jobs:      2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}

	for _, name := range []string{
		"01 - It All Started With a Simple BEEP.m4a",
		"02 - All You Can BEEP Buffee.m4a",
		"03 - The Final Beep.m4a",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, ".chapsplit.lock")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock file should be released, got %v", err)
	}

	if len(recorder.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorder.runs))
	}
	run := recorder.runs[0]
	if run.ID != summary.RunID || run.Status != history.StatusSucceeded || run.Succeeded != 3 || len(run.Chapters) != 3 {
		t.Fatalf("unexpected recorded run %#v", run)
	}
	if run.Chapters[2].Number != 3 || run.Chapters[2].Title != "The Final Beep" {
		t.Fatalf("unexpected chapter record %#v", run.Chapters[2])
	}
}

func TestPipelineListTouchesNothing(t *testing.T) {
	p := newPipeline(t, stubProbe(t, beepJSON), nil)
	outDir := filepath.Join(t.TempDir(), "out")

	summary, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: outDir, Mode: split.ModeList})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Chapters) != 3 || len(summary.Jobs) != 0 {
		t.Fatalf("unexpected list summary %#v", summary)
	}
	if _, err := os.Stat(outDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("list mode must not create the output dir, got %v", err)
	}
}

func TestPipelineListEmptyIsNotAnError(t *testing.T) {
	p := newPipeline(t, stubProbe(t, `{"chapters":[]}`), nil)
	summary, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", Mode: split.ModeList})
	if err != nil || len(summary.Chapters) != 0 {
		t.Fatalf("expected empty listing, got %#v, %v", summary, err)
	}
}

func TestPipelineDryRunReturnsCommands(t *testing.T) {
	p := newPipeline(t, stubProbe(t, beepJSON), nil)
	p.Exec = split.ExecFunc(func(context.Context, ffmpeg.Command, ffmpeg.ExecOptions) ffmpeg.ExecResult {
		t.Fatal("dry run must not execute commands")
		return ffmpeg.ExecResult{}
	})
	outDir := filepath.Join(t.TempDir(), "out")

	summary, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: outDir, Mode: split.ModeDryRun, Settings: settings()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := split.CommandLines(summary.Jobs)
	if len(lines) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ffmpeg -nostdin -i beep.m4a -v error -map_chapters -1 -vn -c copy -ss 0.000000 -to 20.000000 -n -metadata track=1/3") {
		t.Fatalf("unexpected command %q", lines[0])
	}
	if _, err := os.Stat(outDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not create the output dir, got %v", err)
	}
}

func TestPipelineNumbersSparseChapterIDsByPosition(t *testing.T) {
	const sparse = `{"chapters": [
        {"id": 0, "start_time": "0.000000", "end_time": "10.000000", "tags": {"title": "A"}},
        {"id": 5, "start_time": "10.000000", "end_time": "20.000000"},
        {"id": 1234567890123, "start_time": "20.000000", "end_time": "30.000000", "tags": {"title": "C"}}
    ]}`
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	p := newPipeline(t, stubProbe(t, sparse), nil)
	p.Logger = logger

	summary, err := p.Run(context.Background(), split.Request{InputPath: "book.m4a", OutputDir: "out", Mode: split.ModeDryRun, Settings: settings()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"01 - A.m4a", "02 - book.m4a", "03 - C.m4a"}
	for i, job := range summary.Jobs {
		if got := filepath.Base(job.Item.OutputPath); got != want[i] {
			t.Fatalf("job %d: got %q, want %q", i, got, want[i])
		}
		if !strings.Contains(job.Command.String(), fmt.Sprintf("track=%d/3", i+1)) {
			t.Fatalf("job %d: unexpected track tag in %q", i, job.Command.String())
		}
	}

	var warning string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "event_type=title_missing") {
			warning = line
		}
	}
	for _, fragment := range []string{"run_id=" + summary.RunID, "chapter=2", "chapter_id=5"} {
		if !strings.Contains(warning, fragment) {
			t.Fatalf("expected %q in title warning %q", fragment, warning)
		}
	}
}

func TestPipelineDefaultsOutputDirToInputDir(t *testing.T) {
	p := newPipeline(t, stubProbe(t, beepJSON), nil)
	inputDir := t.TempDir()
	summary, err := p.Run(context.Background(), split.Request{InputPath: filepath.Join(inputDir, "beep.m4a"), Mode: split.ModeDryRun, Settings: settings()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.OutputDir != inputDir || filepath.Dir(summary.Items[0].OutputPath) != inputDir {
		t.Fatalf("expected outputs next to input, got %q", summary.OutputDir)
	}
}

func TestPipelineNoChapters(t *testing.T) {
	p := newPipeline(t, stubProbe(t, `{"chapters":[]}`), nil)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: outDir})
	if !errors.Is(err, chapters.ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
	if failure.ExitCode(err) != failure.ExitNoChapters {
		t.Fatalf("unexpected exit code %d", failure.ExitCode(err))
	}
	if _, err := os.Stat(outDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no output dir expected, got %v", err)
	}
}

func TestPipelineOutputDirIsAFile(t *testing.T) {
	p := newPipeline(t, stubProbe(t, beepJSON), nil)
	blocker := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "file"), "x")

	_, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: filepath.Join(blocker, "out")})
	var dirErr *split.DirectoryError
	if !errors.As(err, &dirErr) {
		t.Fatalf("expected DirectoryError, got %v", err)
	}
	if failure.ExitCode(err) != failure.ExitFilesystem {
		t.Fatalf("unexpected exit code %d", failure.ExitCode(err))
	}
}

func TestPipelineReportsFailedJobs(t *testing.T) {
	recorder := &memoryRecorder{err: errors.New("disk full")}
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	p := newPipeline(t, stubProbe(t, beepJSON), recorder)
	p.Logger = logger
	p.Exec = split.ExecFunc(func(_ context.Context, cmd ffmpeg.Command, _ ffmpeg.ExecOptions) ffmpeg.ExecResult {
		if strings.HasPrefix(filepath.Base(cmd.Args[len(cmd.Args)-1]), "02") {
			return ffmpeg.ExecResult{ExitCode: 1, Stderr: "boom", Err: errors.New("exit status 1")}
		}
		return writeOutput(cmd)
	})

	summary, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: t.TempDir(), Settings: settings()})
	var jobErr *split.JobError
	if !errors.As(err, &jobErr) || jobErr.Chapter != 2 {
		t.Fatalf("expected chapter 2 failure, got %v", err)
	}
	succeeded, failed, _ := summary.Report.Counts()
	if succeeded != 2 || failed != 1 {
		t.Fatalf("expected 2 succeeded and 1 failed, got %d/%d", succeeded, failed)
	}
	if recorder.runs[0].Status != history.StatusPartial {
		t.Fatalf("unexpected recorded status %s", recorder.runs[0].Status)
	}
	if !strings.Contains(logs.String(), "failed to record run history") {
		t.Fatalf("expected journal warning in logs, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "run_id="+summary.RunID) {
		t.Fatalf("expected run id in logs, got %q", logs.String())
	}
}

func TestPipelineProbeFailure(t *testing.T) {
	probe := testsupport.StubBinary(t, "ffprobe", `echo "beep.m4a: No such file or directory" >&2
exit 1`)
	p := newPipeline(t, probe, nil)

	_, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a"})
	if !errors.Is(err, failure.ErrExternalTool) {
		t.Fatalf("expected probe failure, got %v", err)
	}
}

func TestPipelineRequiresInput(t *testing.T) {
	p := newPipeline(t, "ffprobe", nil)
	_, err := p.Run(context.Background(), split.Request{})
	if failure.ExitCode(err) != failure.ExitConfiguration {
		t.Fatalf("expected configuration exit code, got %v", err)
	}
}

func TestPipelineWithStubFFmpeg(t *testing.T) {
	argsDir := t.TempDir()
	ffmpegStub := testsupport.StubBinary(t, "ffmpeg", `for last; do :; done
printf '%s\n' "$@" > "`+argsDir+`/$(basename "$last").args"
printf 'x' > "$last"`)

	cfg := config.Default()
	cfg.Tools.FFprobe = stubProbe(t, beepJSON)
	cfg.Tools.FFmpeg = ffmpegStub
	p := split.NewPipeline(&cfg, logging.NewNop(), nil)
	outDir := t.TempDir()

	summary, err := p.Run(context.Background(), split.Request{InputPath: "beep.m4a", OutputDir: outDir, Settings: settings()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Report.BytesWritten() != 3 {
		t.Fatalf("expected 3 bytes written, got %d", summary.Report.BytesWritten())
	}
	recorded, err := os.ReadFile(filepath.Join(argsDir, "03 - The Final Beep.m4a.args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(recorded), "track=3/3\n-metadata\ntitle=The Final Beep\n") {
		t.Fatalf("unexpected ffmpeg args %q", recorded)
	}
}
