package plugin

import "errors"

// Plugin errors.
var (
	// ErrAlreadyActive is returned by Activate on an active plugin.
	ErrAlreadyActive = errors.New("plugin is already active")

	// ErrNotActive is returned by Deactivate on an inactive plugin.
	ErrNotActive = errors.New("plugin is not active")

	// ErrNilBus is returned when no event bus is given.
	ErrNilBus = errors.New("event bus is nil")

	// ErrNilWorkspace is returned when no workspace is given.
	ErrNilWorkspace = errors.New("workspace is nil")
)
