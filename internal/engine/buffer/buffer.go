package buffer

import (
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrRangeInvalid   = errors.New("invalid range")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// Buffer holds document text as lines.
// All methods are thread-safe.
type Buffer struct {
	mu              sync.RWMutex
	lines           []string
	revisionID      RevisionID
	lineEnding      LineEnding
	trailingNewline bool
}

// NewBufferFromLines creates a buffer holding exactly lines.
// A nil or empty slice yields a buffer with zero lines.
func NewBufferFromLines(lines []string) *Buffer {
	return &Buffer{
		lines:      slices.Clone(lines),
		revisionID: NewRevisionID(),
	}
}

// NewBufferFromString creates a buffer from file content.
// The line ending style and a final newline are detected and preserved.
func NewBufferFromString(s string) *Buffer {
	b := &Buffer{revisionID: NewRevisionID()}
	if strings.Contains(s, "\r\n") {
		b.lineEnding = LineEndingCRLF
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if strings.HasSuffix(s, "\n") {
		b.trailingNewline = true
		s = s[:len(s)-1]
	}
	b.lines = strings.Split(s, "\n")
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data)), nil
}

// Text returns the full buffer content with the original line endings.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	text := strings.Join(b.lines, b.lineEnding.Sequence())
	if b.trailingNewline {
		text += b.lineEnding.Sequence()
	}
	return text
}

// Lines returns a copy of every line.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.lines)
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineText returns the text of a line without its terminator.
func (b *Buffer) LineText(line int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if line < 0 || line >= len(b.lines) {
		return "", ErrLineOutOfRange
	}
	return b.lines[line], nil
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// Revision returns the current revision ID.
func (b *Buffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// ReplaceLine replaces the full text of a line.
// text must not contain a newline.
func (b *Buffer) ReplaceLine(line int, text string) (Change, error) {
	if strings.ContainsAny(text, "\r\n") {
		return Change{}, ErrRangeInvalid
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if line < 0 || line >= len(b.lines) {
		return Change{}, ErrLineOutOfRange
	}
	old := b.lines[line]
	return b.replaceLocked(Range{
		Start: Point{Line: line},
		End:   Point{Line: line, Column: len(old)},
	}, text)
}

// Insert inserts text at point.
func (b *Buffer) Insert(at Point, text string) (Change, error) {
	return b.Replace(Range{Start: at, End: at}, text)
}

// Delete removes the text in r.
func (b *Buffer) Delete(r Range) (Change, error) {
	return b.Replace(r, "")
}

// Replace replaces the text in r with text. text may span several lines.
func (b *Buffer) Replace(r Range, text string) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replaceLocked(r, strings.ReplaceAll(text, "\r\n", "\n"))
}

// Apply applies a change recorded earlier, typically an inverted one.
func (b *Buffer) Apply(c Change) (Change, error) {
	return b.Replace(c.Range, c.NewText)
}

func (b *Buffer) replaceLocked(r Range, text string) (Change, error) {
	if err := b.validateLocked(r); err != nil {
		return Change{}, err
	}

	if len(b.lines) == 0 {
		// An empty buffer accepts inserts at (0:0).
		b.lines = []string{""}
	}

	startLine := b.lines[r.Start.Line]
	endLine := b.lines[r.End.Line]
	oldText := b.textLocked(r)

	replacement := strings.Split(startLine[:r.Start.Column]+text+endLine[r.End.Column:], "\n")
	b.lines = slices.Replace(b.lines, r.Start.Line, r.End.Line+1, replacement...)
	b.revisionID = NewRevisionID()

	return Change{
		Type:     changeType(oldText, text),
		Range:    r,
		NewRange: Range{Start: r.Start, End: endOf(r.Start, text)},
		OldText:  oldText,
		NewText:  text,
		Revision: b.revisionID,
	}, nil
}

func (b *Buffer) validateLocked(r Range) error {
	if !r.IsValid() {
		return ErrRangeInvalid
	}
	if len(b.lines) == 0 {
		if r.Start == (Point{}) && r.End == (Point{}) {
			return nil
		}
		return ErrLineOutOfRange
	}
	for _, p := range []Point{r.Start, r.End} {
		if p.Line < 0 || p.Line >= len(b.lines) {
			return ErrLineOutOfRange
		}
		if p.Column < 0 || p.Column > len(b.lines[p.Line]) {
			return ErrRangeInvalid
		}
	}
	return nil
}

func (b *Buffer) textLocked(r Range) string {
	if len(b.lines) == 0 {
		return ""
	}
	if r.Start.Line == r.End.Line {
		return b.lines[r.Start.Line][r.Start.Column:r.End.Column]
	}
	var sb strings.Builder
	sb.WriteString(b.lines[r.Start.Line][r.Start.Column:])
	for i := r.Start.Line + 1; i < r.End.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(b.lines[r.End.Line][:r.End.Column])
	return sb.String()
}
