package nvimhost

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/mcmark/internal/host"
)

// Editor is a Neovim buffer seen through the focused window.
type Editor struct {
	h   *Host
	doc *Document

	mu     sync.Mutex
	cursor host.Position
	closed bool
}

// Document returns the buffer.
func (e *Editor) Document() host.Document { return e.doc }

// Doc returns the concrete document.
func (e *Editor) Doc() *Document { return e.doc }

// Selection returns the cursor of the focused window when it shows this
// buffer, otherwise the last known position.
func (e *Editor) Selection() host.Position {
	if e.shown() {
		if pos, err := e.h.api.WindowCursor(currentWindow); err == nil {
			e.mu.Lock()
			e.cursor = fromCursor(pos)
			e.mu.Unlock()
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetSelection moves the cursor of the focused window if it shows this buffer.
func (e *Editor) SetSelection(pos host.Position) {
	e.mu.Lock()
	e.cursor = pos
	e.mu.Unlock()

	if !e.shown() {
		return
	}
	if err := e.h.api.SetWindowCursor(currentWindow, toCursor(pos)); err != nil {
		e.h.logger.Debug().Err(err).Str("uri", e.doc.URI()).Msg("set cursor failed")
	}
}

// ApplyEdit replaces the lines spanned by edit. Unless a stop is requested
// before it, the edit is joined to the previous undo block.
func (e *Editor) ApplyEdit(ctx context.Context, edit host.Edit, opts host.EditOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return host.ErrEditorClosed
	}

	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.refreshLocked(); err != nil {
		return err
	}
	replacement, err := splice(d.lines, edit)
	if err != nil {
		return fmt.Errorf("%w: %v", host.ErrEditRejected, err)
	}

	r := edit.Range
	if !opts.UndoStopBefore {
		// E790 after an undo is expected; the edit then starts its own block.
		if err := e.h.api.Command("silent! undojoin"); err != nil {
			return fmt.Errorf("%w: %v", host.ErrEditRejected, err)
		}
	}
	if err := e.h.api.SetBufferLines(d.buf, r.Start.Line, r.End.Line+1, true, toBytes(replacement)); err != nil {
		return fmt.Errorf("%w: %v", host.ErrEditRejected, err)
	}

	d.lines = slices.Replace(d.lines, r.Start.Line, r.End.Line+1, replacement...)
	d.version++
	return nil
}

// SetDecorations replaces the extmarks of typ. Only the host's own
// decoration type is rendered; its style was fixed when the host was created.
func (e *Editor) SetDecorations(typ *host.DecorationType, ranges []host.Range) {
	if err := e.h.decorate(e.doc, ranges); err != nil {
		e.h.logger.Warn().Err(err).Str("uri", e.doc.URI()).Str("type", typ.Key).Msg("set decorations failed")
	}
}

func (e *Editor) close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

func (e *Editor) shown() bool {
	buf, err := e.h.api.WindowBuffer(currentWindow)
	return err == nil && buf == e.doc.buf
}

// splice returns the lines that replace the range of edit.
func splice(lines []string, edit host.Edit) ([]string, error) {
	r := edit.Range
	if r.End.Compare(r.Start) < 0 {
		return nil, fmt.Errorf("range %s is reversed", r)
	}
	if r.Start.Line < 0 || r.End.Line >= len(lines) {
		return nil, fmt.Errorf("range %s: %w", r, host.ErrLineOutOfRange)
	}
	first, last := lines[r.Start.Line], lines[r.End.Line]
	if r.Start.Character < 0 || r.Start.Character > len(first) || r.End.Character < 0 || r.End.Character > len(last) {
		return nil, fmt.Errorf("range %s outside line text", r)
	}
	text := first[:r.Start.Character] + strings.ReplaceAll(edit.NewText, "\r\n", "\n") + last[r.End.Character:]
	return strings.Split(text, "\n"), nil
}

// fromCursor converts a window cursor (1-based row) to a position.
func fromCursor(pos [2]int) host.Position {
	return host.Position{Line: max(pos[0]-1, 0), Character: max(pos[1], 0)}
}

func toCursor(pos host.Position) [2]int {
	return [2]int{pos.Line + 1, pos.Character}
}

var _ host.Editor = (*Editor)(nil)
