// Package synchronizer drives marker reconciliation against a live editor.
//
// A sweep walks the editor's document command by command, reading each
// command's lines fresh from the editor, reconciles it, applies one
// single-line edit per changed line and finally hands the complete decoration
// set to the editor. Because only single-line replacements are issued, line
// indices never shift during a sweep and edits land top to bottom.
//
// A sweep is idempotent: sweeping again without an intervening change issues
// no edits and yields the same decorations. An edit the editor rejects aborts
// the sweep; whatever already landed stays, and the next sweep repairs the
// rest.
package synchronizer
