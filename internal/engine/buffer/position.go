package buffer

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed. Column is measured in bytes.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Range represents a span of text: [Start, End).
type Range struct {
	Start Point
	End   Point
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start does not come after End.
func (r Range) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// endOf returns the point after text inserted at start.
func endOf(start Point, text string) Point {
	n := strings.Count(text, "\n")
	if n == 0 {
		return Point{Line: start.Line, Column: start.Column + len(text)}
	}
	return Point{Line: start.Line + n, Column: len(text) - strings.LastIndex(text, "\n") - 1}
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter atomic.Uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}
