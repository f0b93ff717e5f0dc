// Package ffmpeg builds and runs the stream-copy ffmpeg invocations that cut
// one chapter out of an input file.
package ffmpeg

import (
	"strconv"
	"strings"

	"chapsplit/internal/chapters"
)

// Command is a program and its argument vector. It carries no state beyond
// the arguments, so it can be rendered for a dry run or executed as is.
type Command struct {
	Program string
	Args    []string
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// String renders the command as a single POSIX shell line.
func (c Command) String() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// BuildSplit returns the ffmpeg command that extracts item from its input.
// Streams are copied without re-encoding, video and container chapters are
// dropped, and existing outputs are never overwritten.
func BuildSplit(binary string, item chapters.WorkItem, opts chapters.Options) Command {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := make([]string, 0, 24)
	args = append(args,
		"-nostdin",
		"-i", item.InputPath,
		"-v", "error",
		"-map_chapters", "-1",
		"-vn",
		"-c", "copy",
		"-ss", item.StartTime,
		"-to", item.EndTime,
		"-n",
		"-metadata", "track="+strconv.Itoa(item.Number())+"/"+strconv.Itoa(opts.TrackTotal()),
	)
	if opts.UseTitleInMeta() && item.Title != "" {
		args = append(args, "-metadata", "title="+item.Title)
	}
	args = append(args, item.OutputPath)

	return Command{Program: binary, Args: args}
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.IndexFunc(arg, needsQuoting) < 0 {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:,+@%", r)
}
