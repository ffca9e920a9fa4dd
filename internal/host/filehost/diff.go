package filehost

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line diff of the result, or "" when nothing changed.
func (r *Result) Diff() string {
	if !r.Changed() {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(r.Before, r.After)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", r.Path, r.Path)

	line := 1
	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line += len(lines)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&sb, "@@ line %d @@\n", line)
			for _, l := range lines {
				fmt.Fprintf(&sb, "-%s\n", l)
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				fmt.Fprintf(&sb, "+%s\n", l)
			}
			line += len(lines)
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
