package marker

import "iter"

// Source provides read access to the lines of a document.
// Implementations are expected to return current text on every call.
type Source interface {
	LineCount() int
	LineText(line int) (string, error)
}

// Lines adapts a string slice to Source.
type Lines []string

// LineCount returns the number of lines.
func (l Lines) LineCount() int { return len(l) }

// LineText returns the text of a line.
func (l Lines) LineText(line int) (string, error) {
	if line < 0 || line >= len(l) {
		return "", ErrLineOutOfRange
	}
	return l[line], nil
}

// Command is a logical command: one line, or a run of backslash-continued lines.
type Command struct {
	Lines     []string
	StartLine int
	EndLine   int
}

// Len returns the number of lines in the command.
func (c Command) Len() int {
	return len(c.Lines)
}

// IsMultiline reports whether the command spans more than one line.
func (c Command) IsMultiline() bool {
	return len(c.Lines) > 1
}

// Contains reports whether line belongs to the command.
func (c Command) Contains(line int) bool {
	return line >= c.StartLine && line <= c.EndLine
}

// Commands yields the logical commands of src from line 0 to the end.
// The line count is re-read before each command, so the walk observes edits
// made to already visited commands. Iteration stops at the first read error.
func Commands(src Source) iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		start := 0
		for start < src.LineCount() {
			cmd, err := readCommand(src, start)
			if !yield(cmd, err) || err != nil {
				return
			}
			start = cmd.EndLine + 1
		}
	}
}

// Segment yields the logical commands of lines.
func Segment(lines []string) iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for cmd, err := range Commands(Lines(lines)) {
			if err != nil || !yield(cmd) {
				return
			}
		}
	}
}

func readCommand(src Source, start int) (Command, error) {
	cmd := Command{StartLine: start, EndLine: start}
	for line := start; ; line++ {
		text, err := src.LineText(line)
		if err != nil {
			return cmd, err
		}
		cmd.Lines = append(cmd.Lines, text)
		cmd.EndLine = line
		if !IsContinued(text) || line+1 >= src.LineCount() {
			return cmd, nil
		}
	}
}
