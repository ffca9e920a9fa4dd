package buffer

import "fmt"

// ChangeType categorizes the type of change made to the buffer.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change represents a single change to the buffer.
// This is used for change notification and undo/redo.
type Change struct {
	Type     ChangeType // Type of change
	Range    Range      // Original range that was affected
	NewRange Range      // Resulting range after the change
	OldText  string     // Text that was removed
	NewText  string     // Text that was added
	Revision RevisionID // Buffer revision after the change
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("%s%s %q -> %q", c.Type, c.Range, c.OldText, c.NewText)
}

// Invert returns the change that undoes c.
func (c Change) Invert() Change {
	inv := Change{
		Range:    c.NewRange,
		NewRange: c.Range,
		OldText:  c.NewText,
		NewText:  c.OldText,
	}
	switch c.Type {
	case ChangeInsert:
		inv.Type = ChangeDelete
	case ChangeDelete:
		inv.Type = ChangeInsert
	default:
		inv.Type = ChangeReplace
	}
	return inv
}

func changeType(oldText, newText string) ChangeType {
	switch {
	case oldText == "":
		return ChangeInsert
	case newText == "":
		return ChangeDelete
	default:
		return ChangeReplace
	}
}
