package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"chapsplit/internal/ffprobe"
)

type chapterView struct {
	Number   int     `json:"number" yaml:"number"`
	ID       int     `json:"id" yaml:"id"`
	Start    string  `json:"start_time" yaml:"start_time"`
	End      string  `json:"end_time" yaml:"end_time"`
	Duration float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Title    string  `json:"title,omitempty" yaml:"title,omitempty"`
}

func validListFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	default:
		return false
	}
}

func chapterViews(list []ffprobe.Chapter) []chapterView {
	views := make([]chapterView, 0, len(list))
	for i, ch := range list {
		title, _ := ch.Title()
		views = append(views, chapterView{
			Number:   i + 1,
			ID:       ch.ID,
			Start:    ch.StartTime,
			End:      ch.EndTime,
			Duration: ch.DurationSeconds(),
			Title:    title,
		})
	}
	return views
}

func renderChapterList(cmd *cobra.Command, format string, list []ffprobe.Chapter) error {
	views := chapterViews(list)
	out := cmd.OutOrStdout()
	if format != "table" {
		return writeStructured(out, format, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No chapters found")
		return nil
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.Number),
			formatTimestamp(v.Start),
			formatTimestamp(v.End),
			formatSeconds(v.Duration),
			v.Title,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "Duration", "Title"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

// formatTimestamp renders an ffprobe decimal-seconds string as H:MM:SS.mmm,
// or returns it unchanged when it does not parse.
func formatTimestamp(raw string) string {
	ch := ffprobe.Chapter{StartTime: raw}
	seconds := ch.StartSeconds()
	if math.IsNaN(seconds) {
		return raw
	}
	return formatSeconds(seconds)
}

func formatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "-"
	}
	d := time.Duration(math.Round(seconds * float64(time.Second)))
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
}
