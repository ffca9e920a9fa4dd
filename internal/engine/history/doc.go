// Package history provides undo/redo for line buffers.
//
// Changes are recorded into undo steps. Whether a change opens a new step or
// joins the current one is decided by undo stops, the same way editors let
// programmatic edits ride along with the user's last keystroke:
//
//	h := history.New(1000)
//
//	// A user edit opens a step and leaves it open.
//	h.Record(change, history.Stops{Before: true})
//
//	// A follow-up fix joins the same step.
//	h.Record(fix, history.Stops{})
//
//	// One undo reverts both.
//	h.Undo(buf)
//
// Explicit groups are available through BeginGroup/EndGroup and Transaction.
package history
