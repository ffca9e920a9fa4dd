package memory

import (
	"context"
	"io"
	"sync"

	"github.com/dshills/mcmark/internal/engine/buffer"
	"github.com/dshills/mcmark/internal/engine/history"
	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/event/events"
	"github.com/dshills/mcmark/internal/host"
)

// Source is the event source name used by this host.
const Source = "memory"

// Workspace holds open editors and tracks the focused one.
type Workspace struct {
	bus *event.Bus

	mu      sync.Mutex
	editors []*Editor
	active  *Editor
}

// NewWorkspace creates a workspace publishing to bus. bus may be nil.
func NewWorkspace(bus *event.Bus) *Workspace {
	return &Workspace{bus: bus}
}

// Open creates an editor for text at path. It does not take focus.
func (w *Workspace) Open(path, text string) *Editor {
	return w.open(path, buffer.NewBufferFromString(text))
}

// OpenLines creates an editor holding exactly lines.
func (w *Workspace) OpenLines(path string, lines []string) *Editor {
	return w.open(path, buffer.NewBufferFromLines(lines))
}

// OpenReader creates an editor from r.
func (w *Workspace) OpenReader(path string, r io.Reader) (*Editor, error) {
	buf, err := buffer.NewBufferFromReader(r)
	if err != nil {
		return nil, err
	}
	return w.open(path, buf), nil
}

func (w *Workspace) open(path string, buf *buffer.Buffer) *Editor {
	ed := &Editor{
		ws:          w,
		doc:         newDocument(path, buf),
		hist:        history.New(0),
		decorations: make(map[string][]host.Range),
	}
	w.mu.Lock()
	w.editors = append(w.editors, ed)
	w.mu.Unlock()
	return ed
}

// Show gives ed focus and publishes editor.active.changed. nil clears focus.
func (w *Workspace) Show(ctx context.Context, ed *Editor) error {
	w.mu.Lock()
	w.active = ed
	w.mu.Unlock()

	if w.bus == nil {
		return nil
	}
	payload := events.EditorActiveChanged{}
	if ed != nil {
		payload.Editor = ed
	}
	return w.bus.Publish(ctx, event.NewEvent(events.TopicEditorActiveChanged, payload, Source))
}

// Close closes ed. A focused editor loses focus without an event.
func (w *Workspace) Close(ed *Editor) {
	ed.mu.Lock()
	ed.closed = true
	ed.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, e := range w.editors {
		if e == ed {
			w.editors = append(w.editors[:i], w.editors[i+1:]...)
			break
		}
	}
	if w.active == ed {
		w.active = nil
	}
}

// ActiveEditor returns the focused editor, or nil.
func (w *Workspace) ActiveEditor() host.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil
	}
	return w.active
}

// Editors returns every open editor.
func (w *Workspace) Editors() []*Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Editor(nil), w.editors...)
}

var _ host.Workspace = (*Workspace)(nil)
