// Package marker implements the macro marker rules for .mcfunction command files.
//
// A command file is a sequence of lines. Lines ending in a backslash continue
// onto the next line, and the resulting run of lines forms one logical
// command. A command that contains a macro placeholder such as $(name)
// anywhere in its text must begin with the "$" marker so the game evaluates it
// as a macro line; a command without a placeholder must not carry the marker.
//
// # Segmentation
//
// Commands yields the logical commands of a line source lazily, top to bottom:
//
//	for cmd, err := range marker.Commands(src) {
//	    if err != nil {
//	        return err
//	    }
//	    res := marker.Reconcile(cmd)
//	    ...
//	}
//
// Segment is the same walk over a plain string slice.
//
// # Reconciliation
//
// Reconcile computes the corrected lines of one command and reports which lines
// changed. Only the first line of a command may carry the marker. Comment-led
// commands (first non-blank rune is '#') are never prefixed automatically.
//
// A "$" that itself opens a placeholder, as in "$(x) say", is not a marker.
// This keeps stripping from ever destroying a placeholder, which in turn keeps
// reconciliation idempotent.
//
// All functions in this package are pure and safe for concurrent use.
package marker
