// Package events defines the topics and payloads exchanged between editors
// and the marker plugin.
package events

import (
	"time"

	"github.com/dshills/mcmark/internal/event/topic"
	"github.com/dshills/mcmark/internal/host"
)

// Topics published by editors.
const (
	TopicEditorActiveChanged topic.Topic = "editor.active.changed"
	TopicDocumentTextChanged topic.Topic = "document.text.changed"
)

// Topics published by the marker plugin.
const (
	TopicDecorationsUpdated topic.Topic = "marker.decorations.updated"
	TopicSweepFailed        topic.Topic = "marker.sweep.failed"
)

// EditorActiveChanged is published when focus moves to another editor.
// Editor is nil when no editor has focus.
type EditorActiveChanged struct {
	Editor host.Editor
}

// DocumentTextChanged is published after a document's text changed.
type DocumentTextChanged struct {
	Document host.Document
	// Lines lists the lines touched by the change, when known.
	Lines []int
	// Version is the document version after the change.
	Version uint64
}

// DecorationsUpdated is published after a sweep set decorations.
type DecorationsUpdated struct {
	URI      string
	Ranges   []host.Range
	Edits    int
	Commands int
	Duration time.Duration
}

// SweepFailed is published when an editor error aborted a sweep.
type SweepFailed struct {
	URI string
	Err error
}
