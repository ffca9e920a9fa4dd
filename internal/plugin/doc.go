// Package plugin binds the marker synchronizer to editor events.
//
// A Plugin listens on the event bus for two things: focus moving to another
// editor and text changing in a document. Only the focused editor is
// processed, and only when its document path matches one of the configured
// file patterns.
//
// Focus changes sweep right away. Text changes are debounced per document so
// that a burst of keystrokes results in one sweep once typing pauses. Every
// sweep runs on a single consumer goroutine, so at most one sweep is in
// flight and a change arriving during a sweep is handled by the next one.
//
// When focus moves to a document that does not qualify, the plugin clears
// its decorations on that editor.
//
// Basic usage:
//
//	bus := event.NewBus()
//	ws := memory.NewWorkspace(bus)
//	p, err := plugin.New(bus, ws)
//	if err != nil {
//	    return err
//	}
//	if err := p.Activate(ctx); err != nil {
//	    return err
//	}
//	defer p.Deactivate()
package plugin
