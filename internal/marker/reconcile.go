package marker

import (
	"slices"
	"strings"
)

// LineChange describes one line rewritten by Reconcile.
type LineChange struct {
	Line  int    // document line index
	Old   string // text before
	New   string // text after
	Delta int    // len(New) - len(Old): +1 for an added marker, -1 for a removed one
}

// Result is the outcome of reconciling one command.
type Result struct {
	// Lines holds the corrected text of every line in the command.
	Lines []string
	// HasMacro reports a placeholder anywhere in the command.
	HasMacro bool
	// ShowMarker reports that the first line should be decorated.
	ShowMarker bool
	// Changes lists the lines whose text differs from the input, top to bottom.
	Changes []LineChange
}

// Changed reports whether any line was rewritten.
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

// Reconcile computes the marker state of cmd.
//
// With a placeholder present the first line gains a marker unless it is a
// comment, and continuation lines lose theirs. Without one every line loses
// its marker. Single-line commands follow the same rules on their only line.
func Reconcile(cmd Command) Result {
	if len(cmd.Lines) == 0 {
		return Result{}
	}

	hasMacro := HasMacro(strings.Join(cmd.Lines, ""))
	out := slices.Clone(cmd.Lines)

	for i := range out {
		switch {
		case i == 0 && hasMacro:
			if !IsComment(out[0]) {
				out[0] = AddMarker(out[0])
			}
		default:
			out[i] = StripMarker(out[i])
		}
	}

	res := Result{
		Lines:    out,
		HasMacro: hasMacro,
	}
	if col, ok := MarkerColumn(out[0]); ok && col == 0 {
		res.ShowMarker = hasMacro
	}

	for i, text := range out {
		if text == cmd.Lines[i] {
			continue
		}
		res.Changes = append(res.Changes, LineChange{
			Line:  cmd.StartLine + i,
			Old:   cmd.Lines[i],
			New:   text,
			Delta: len(text) - len(cmd.Lines[i]),
		})
	}

	return res
}

// ReconcileLines reconciles every command of lines and returns the corrected
// lines together with the indices of lines that should be decorated.
func ReconcileLines(lines []string) (out []string, decorated []int) {
	out = slices.Clone(lines)
	for cmd := range Segment(lines) {
		res := Reconcile(cmd)
		copy(out[cmd.StartLine:cmd.EndLine+1], res.Lines)
		if res.ShowMarker {
			decorated = append(decorated, cmd.StartLine)
		}
	}
	return out, decorated
}
