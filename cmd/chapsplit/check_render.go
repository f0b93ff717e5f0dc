package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"chapsplit/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// renderChecks formats one line per check with labels padded to the widest
// name. Failed checks render red and passing ones green when colorize is set.
func renderChecks(results []preflight.Result, colorize bool) string {
	width := 0
	for _, r := range results {
		width = max(width, len(r.Name)+1)
	}
	var b strings.Builder
	for _, r := range results {
		tag, color := "[OK]", ansiGreen
		if !r.Passed {
			tag, color = "[ERROR]", ansiRed
		}
		line := strings.TrimRight(fmt.Sprintf("  %-*s %s %s", width, r.Name+":", tag, r.Detail), " ")
		if colorize {
			line = color + line + ansiReset
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
