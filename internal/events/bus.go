package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. A nil bus drops the event,
// which lets components run without an event bus wired in.
// Usage: bus.Publish(CaptureStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	// kelindar/event dispatches on the static type, so route each known type
	switch e := ev.(type) {
	case CaptureStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case CaptureLineEvent:
		event.Publish(b.dispatcher, e)
	case CaptureRejectedEvent:
		event.Publish(b.dispatcher, e)
	case RecordingChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e CaptureStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CaptureStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CaptureLineEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CaptureRejectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RecordingChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
