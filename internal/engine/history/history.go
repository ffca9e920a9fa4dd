package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/mcmark/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Stops controls step boundaries around a recorded change.
type Stops struct {
	Before bool // close the current step and open a new one
	After  bool // close the step after this change
}

// Step is one undo unit.
type Step struct {
	Changes   []buffer.Change
	Timestamp time.Time
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*Step
	redoStack []*Step

	// open reports that the top undo step accepts more changes.
	open bool

	grouping bool
	group    *Step

	maxEntries int
}

// New creates a history keeping at most maxEntries undo steps.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{maxEntries: maxEntries}
}

// Record adds an applied change to the history. Clears the redo stack.
func (h *History) Record(c buffer.Change, stops Stops) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil

	if h.grouping {
		h.group.Changes = append(h.group.Changes, c)
		return
	}

	if stops.Before || !h.open || len(h.undoStack) == 0 {
		h.pushLocked(&Step{Timestamp: time.Now()})
	}
	top := h.undoStack[len(h.undoStack)-1]
	top.Changes = append(top.Changes, c)
	h.open = !stops.After
}

// Close ends the current step so the next change opens a new one.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open = false
}

func (h *History) pushLocked(s *Step) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the most recent step.
func (h *History) Undo(buf *buffer.Buffer) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	step := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.open = false
	h.mu.Unlock()

	for i := len(step.Changes) - 1; i >= 0; i-- {
		if _, err := buf.Apply(step.Changes[i].Invert()); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, step)
	h.mu.Unlock()
	return nil
}

// Redo reapplies the most recently undone step.
func (h *History) Redo(buf *buffer.Buffer) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	step := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	for _, c := range step.Changes {
		if _, err := buf.Apply(c); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, step)
	h.open = false
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an explicit group. Changes recorded until EndGroup form
// one step regardless of their stops. Nested calls are ignored.
func (h *History) BeginGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.group = &Step{Timestamp: time.Now()}
}

// EndGroup closes the group and pushes it as a single step.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if len(h.group.Changes) > 0 {
		h.pushLocked(h.group)
		h.open = false
	}
	h.group = nil
}

// Transaction records the changes made by fn as one step.
// If fn fails the changes already recorded are still kept as a step.
func (h *History) Transaction(fn func() error) error {
	h.BeginGroup()
	defer h.EndGroup()
	return fn()
}
