package host

import "errors"

// Errors returned by editors.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrEditRejected   = errors.New("edit rejected")
	ErrEditorClosed   = errors.New("editor is closed")
)
