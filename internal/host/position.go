package host

import "fmt"

// Position is a zero-based line and character offset.
// Character is measured in bytes from the start of the line.
type Position struct {
	Line      int
	Character int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Character)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Character < other.Character:
		return -1
	case p.Character > other.Character:
		return 1
	}
	return 0
}

// Range is a half-open span [Start, End).
type Range struct {
	Start Position
	End   Position
}

// LineRange returns the range covering the full text of a line of the given length.
func LineRange(line, length int) Range {
	return Range{
		Start: Position{Line: line},
		End:   Position{Line: line, Character: length},
	}
}

// MarkerRange returns the one-character range of a marker at column 0.
func MarkerRange(line int) Range {
	return Range{
		Start: Position{Line: line},
		End:   Position{Line: line, Character: 1},
	}
}

// IsEmpty returns true if the range spans no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsSingleLine returns true if the range starts and ends on the same line.
func (r Range) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// Line is a snapshot of one document line.
type Line struct {
	Number int
	Text   string
	Range  Range
}

// NewLine returns a Line with its full range filled in.
func NewLine(number int, text string) Line {
	return Line{
		Number: number,
		Text:   text,
		Range:  LineRange(number, len(text)),
	}
}
