package app

import (
	"errors"
	"fmt"
)

// ErrNoScript is returned by Hook when no Lua script is configured.
var ErrNoScript = errors.New("no lua script configured")

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
