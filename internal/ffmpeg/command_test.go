package ffmpeg_test

import (
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"chapsplit/internal/chapters"
	"chapsplit/internal/ffmpeg"
	"chapsplit/internal/ffprobe"
	"chapsplit/internal/logging"
)

func sampleItem() chapters.WorkItem {
	return chapters.WorkItem{
		Index:      0,
		ChapterID:  0,
		StartTime:  "0.000000",
		EndTime:    "20.000000",
		Title:      "It All Started With a Simple BEEP",
		InputPath:  "beep.m4a",
		OutputPath: "out/01 - It All Started With a Simple BEEP.m4a",
	}
}

func TestBuildSplitArgumentOrder(t *testing.T) {
	opts := chapters.NewOptions(2, chapters.Settings{UseTitleAsName: true, UseTitleInMeta: true})
	cmd := ffmpeg.BuildSplit("", sampleItem(), opts)

	want := []string{
		"ffmpeg",
		"-nostdin",
		"-i", "beep.m4a",
		"-v", "error",
		"-map_chapters", "-1",
		"-vn",
		"-c", "copy",
		"-ss", "0.000000",
		"-to", "20.000000",
		"-n",
		"-metadata", "track=1/3",
		"-metadata", "title=It All Started With a Simple BEEP",
		"out/01 - It All Started With a Simple BEEP.m4a",
	}
	if got := cmd.Argv(); !slices.Equal(got, want) {
		t.Fatalf("unexpected argv:\n got %q\nwant %q", got, want)
	}
}

func TestBuildSplitOmitsTitleMetadata(t *testing.T) {
	item := sampleItem()

	disabled := chapters.NewOptions(2, chapters.Settings{UseTitleAsName: true, UseTitleInMeta: false})
	if slices.Contains(ffmpeg.BuildSplit("ffmpeg", item, disabled).Args, "title="+item.Title) {
		t.Fatal("title metadata must be omitted when disabled")
	}

	item.Title = ""
	enabled := chapters.NewOptions(2, chapters.Settings{UseTitleInMeta: true})
	for _, arg := range ffmpeg.BuildSplit("ffmpeg", item, enabled).Args {
		if arg == "title=" {
			t.Fatal("empty title must not produce metadata")
		}
	}
}

func TestBuildSplitNeverOverwrites(t *testing.T) {
	opts := chapters.NewOptions(0, chapters.Settings{})
	cmd := ffmpeg.BuildSplit("/opt/ffmpeg/bin/ffmpeg", sampleItem(), opts)
	if cmd.Program != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected program %q", cmd.Program)
	}
	if !slices.Contains(cmd.Args, "-n") || slices.Contains(cmd.Args, "-y") {
		t.Fatalf("expected no-clobber flag, got %q", cmd.Args)
	}
	if cmd.Args[len(cmd.Args)-1] != sampleItem().OutputPath {
		t.Fatalf("output path must be last, got %q", cmd.Args[len(cmd.Args)-1])
	}
}

func TestBuildSplitTrackNumbers(t *testing.T) {
	item := sampleItem()
	item.Index = 11
	opts := chapters.NewOptions(11, chapters.Settings{})
	args := ffmpeg.BuildSplit("ffmpeg", item, opts).Args
	if !slices.Contains(args, "track=12/12") {
		t.Fatalf("expected track=12/12 in %q", args)
	}
}

func TestBuildSplitTrackTagsIgnoreChapterIDs(t *testing.T) {
	list := []ffprobe.Chapter{
		{ID: 0, StartTime: "0", EndTime: "1", Tags: map[string]string{"title": "A"}},
		{ID: 5, StartTime: "1", EndTime: "2", Tags: map[string]string{"title": "B"}},
		{ID: 1 << 40, StartTime: "2", EndTime: "3", Tags: map[string]string{"title": "C"}},
	}
	opts := chapters.OptionsFor(ffprobe.Result{Chapters: list}, chapters.Settings{UseTitleAsName: true, UseTitleInMeta: true})
	items, err := chapters.Plan("book.m4a", "out", list, opts, logging.NewNop())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, item := range items {
		args := ffmpeg.BuildSplit("ffmpeg", item, opts).Args
		if want := fmt.Sprintf("track=%d/3", i+1); !slices.Contains(args, want) {
			t.Fatalf("chapter %d: expected %s in %q", i, want, args)
		}
		if want := filepath.Join("out", fmt.Sprintf("%02d - %s.m4a", i+1, list[i].Tags["title"])); args[len(args)-1] != want {
			t.Fatalf("chapter %d: output %q, want %q", i, args[len(args)-1], want)
		}
	}
}

func TestCommandString(t *testing.T) {
	cmd := ffmpeg.Command{Program: "ffmpeg", Args: []string{"-i", "in put.m4a", "-metadata", "title=Bob's Song", "", "out/01.m4a"}}
	want := `ffmpeg -i 'in put.m4a' -metadata 'title=Bob'\''s Song' '' out/01.m4a`
	if got := cmd.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
}
