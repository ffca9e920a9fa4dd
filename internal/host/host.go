package host

import "context"

// Document is read access to a text document owned by the editor.
type Document interface {
	// URI identifies the document within its editor.
	URI() string
	// Path is the file system path, or "" for unsaved documents.
	Path() string
	// LineCount returns the current number of lines.
	LineCount() int
	// LineAt returns the current text of a line.
	LineAt(line int) (Line, error)
	// Version increments on every change to the document.
	Version() uint64
}

// Edit replaces the text in Range with NewText.
type Edit struct {
	Range   Range
	NewText string
}

// EditOptions controls how an edit enters the editor's undo history.
type EditOptions struct {
	// UndoStopBefore starts a new undo step before the edit.
	UndoStopBefore bool
	// UndoStopAfter closes the undo step after the edit.
	UndoStopAfter bool
}

// Editor is a view of a document with a cursor and decorations.
type Editor interface {
	Document() Document
	// Selection returns the active cursor position.
	Selection() Position
	// SetSelection moves the cursor.
	SetSelection(pos Position)
	// ApplyEdit applies edit and returns once the editor has accepted it.
	ApplyEdit(ctx context.Context, edit Edit, opts EditOptions) error
	// SetDecorations replaces every range previously set for typ.
	SetDecorations(typ *DecorationType, ranges []Range)
}

// Workspace tracks which editor has focus.
type Workspace interface {
	// ActiveEditor returns the focused editor, or nil if none.
	ActiveEditor() Editor
}

// LineText returns the text of a line of doc.
func LineText(doc Document, line int) (string, error) {
	l, err := doc.LineAt(line)
	if err != nil {
		return "", err
	}
	return l.Text, nil
}

// Source adapts a Document to the line source used by the marker package.
type Source struct {
	Doc Document
}

// LineCount returns the document's current line count.
func (s Source) LineCount() int {
	return s.Doc.LineCount()
}

// LineText returns the document's current text for line.
func (s Source) LineText(line int) (string, error) {
	return LineText(s.Doc, line)
}
