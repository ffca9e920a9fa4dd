// Package event provides the in-process event bus that connects editors to
// the marker plugin.
//
// Editors publish what happened (a different editor gained focus, a document's
// text changed) and the plugin subscribes to the topics it cares about. The
// bus itself knows nothing about documents.
//
// # Topics
//
// Topics are hierarchical and dot separated:
//
//	editor.active.changed    - focus moved to another editor (or to none)
//	document.text.changed    - text of a document changed
//	marker.decorations.updated - a sweep finished and decorations were set
//	marker.sweep.failed      - a sweep was aborted by an editor error
//
// Subscriptions accept "*" (one segment) and "**" (any number of segments).
//
// # Delivery
//
// Publish delivers synchronously in the publisher's goroutine, in priority
// order (higher first, then subscription order). A panicking handler is
// recovered and reported as ErrHandlerPanic; remaining handlers still run.
//
//	bus := event.NewBus()
//	sub, err := bus.SubscribeFunc(events.TopicDocumentTextChanged, func(ctx context.Context, e event.Event) error {
//	    changed := e.Payload.(events.DocumentTextChanged)
//	    ...
//	    return nil
//	})
//	defer bus.Unsubscribe(sub)
//
//	bus.Publish(ctx, event.NewEvent(events.TopicDocumentTextChanged, payload, "memory"))
//
// # Thread Safety
//
// The Bus is safe for concurrent use. Handlers must manage their own
// synchronization.
//
// # Subpackages
//
//   - topic: Topic type and wildcard matching
//   - events: Topic constants and payload types
package event
