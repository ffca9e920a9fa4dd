package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/mcmark/internal/engine/buffer"
	"github.com/dshills/mcmark/internal/engine/history"
	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/event/events"
	"github.com/dshills/mcmark/internal/host"
)

// EditFilter can veto an edit before it is applied.
type EditFilter func(host.Edit) error

// Editor is an in-memory host.Editor.
type Editor struct {
	ws   *Workspace
	doc  *Document
	hist *history.History

	mu          sync.Mutex
	cursor      host.Position
	decorations map[string][]host.Range
	filter      EditFilter
	applied     int
	closed      bool
}

// Document returns the editor's document.
func (e *Editor) Document() host.Document { return e.doc }

// Doc returns the concrete document.
func (e *Editor) Doc() *Document { return e.doc }

// History returns the undo history.
func (e *Editor) History() *history.History { return e.hist }

// Selection returns the cursor position.
func (e *Editor) Selection() host.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetSelection moves the cursor, clamped to the document.
func (e *Editor) SetSelection(pos host.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = e.clamp(pos)
}

func (e *Editor) clamp(pos host.Position) host.Position {
	n := e.doc.buf.LineCount()
	if n == 0 {
		return host.Position{}
	}
	pos.Line = min(max(pos.Line, 0), n-1)
	text, _ := e.doc.buf.LineText(pos.Line)
	pos.Character = min(max(pos.Character, 0), len(text))
	return pos
}

// SetEditFilter installs f to veto programmatic edits. nil removes it.
func (e *Editor) SetEditFilter(f EditFilter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = f
}

// AppliedEdits returns the number of edits applied through ApplyEdit.
func (e *Editor) AppliedEdits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied
}

// ApplyEdit applies a programmatic edit.
func (e *Editor) ApplyEdit(ctx context.Context, edit host.Edit, opts host.EditOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	filter, closed := e.filter, e.closed
	e.mu.Unlock()

	if closed {
		return host.ErrEditorClosed
	}
	if filter != nil {
		if err := filter(edit); err != nil {
			return fmt.Errorf("%w: %v", host.ErrEditRejected, err)
		}
	}

	change, err := e.doc.buf.Replace(toBufferRange(edit.Range), edit.NewText)
	if err != nil {
		return fmt.Errorf("%w: %v", host.ErrEditRejected, err)
	}
	e.hist.Record(change, history.Stops{Before: opts.UndoStopBefore, After: opts.UndoStopAfter})

	e.mu.Lock()
	e.applied++
	e.cursor = e.clamp(e.cursor)
	e.mu.Unlock()

	return e.changed(ctx, change)
}

// Type inserts text at pos as a user keystroke and moves the cursor after it.
func (e *Editor) Type(ctx context.Context, pos host.Position, text string) error {
	change, err := e.doc.buf.Insert(buffer.Point{Line: pos.Line, Column: pos.Character}, text)
	if err != nil {
		return err
	}
	e.hist.Record(change, history.Stops{Before: true})

	e.mu.Lock()
	e.cursor = e.clamp(host.Position{Line: change.NewRange.End.Line, Character: change.NewRange.End.Column})
	e.mu.Unlock()

	return e.changed(ctx, change)
}

// Replace replaces r with text as a user edit.
func (e *Editor) Replace(ctx context.Context, r host.Range, text string) error {
	change, err := e.doc.buf.Replace(toBufferRange(r), text)
	if err != nil {
		return err
	}
	e.hist.Record(change, history.Stops{Before: true})

	e.mu.Lock()
	e.cursor = e.clamp(e.cursor)
	e.mu.Unlock()

	return e.changed(ctx, change)
}

// Undo reverts the last undo step.
func (e *Editor) Undo(ctx context.Context) error {
	if err := e.hist.Undo(e.doc.buf); err != nil {
		return err
	}
	return e.changed(ctx, buffer.Change{})
}

// Redo reapplies the last undone step.
func (e *Editor) Redo(ctx context.Context) error {
	if err := e.hist.Redo(e.doc.buf); err != nil {
		return err
	}
	return e.changed(ctx, buffer.Change{})
}

// SetDecorations replaces the ranges stored for typ.
func (e *Editor) SetDecorations(typ *host.DecorationType, ranges []host.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decorations[typ.Key] = slices.Clone(ranges)
}

// Decorations returns the ranges currently set for typ.
func (e *Editor) Decorations(typ *host.DecorationType) []host.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.decorations[typ.Key])
}

func (e *Editor) changed(ctx context.Context, c buffer.Change) error {
	version := e.doc.version.Add(1)

	var lines []int
	if c.Revision != 0 {
		for l := c.NewRange.Start.Line; l <= c.NewRange.End.Line; l++ {
			lines = append(lines, l)
		}
	}

	if e.ws == nil || e.ws.bus == nil {
		return nil
	}
	return e.ws.bus.Publish(ctx, event.NewEvent(events.TopicDocumentTextChanged, events.DocumentTextChanged{
		Document: e.doc,
		Lines:    lines,
		Version:  version,
	}, Source))
}

func toBufferRange(r host.Range) buffer.Range {
	return buffer.Range{
		Start: buffer.Point{Line: r.Start.Line, Column: r.Start.Character},
		End:   buffer.Point{Line: r.End.Line, Column: r.End.Character},
	}
}

var _ host.Editor = (*Editor)(nil)
