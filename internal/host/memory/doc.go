// Package memory implements an in-process editor host.
//
// Documents live in line buffers with undo history. Every applied edit, user
// or programmatic, publishes document.text.changed on the bus, and showing an
// editor publishes editor.active.changed, the same notifications a desktop
// editor would deliver to a plugin. The CLI uses this host to run sweeps over
// files; tests use it to observe edits, cursor moves and decorations.
package memory
