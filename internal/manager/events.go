package manager

// Event names published by the manager.
const (
	EventQueued  = "load_queued"
	EventStart   = "load_start"
	EventDone    = "load_done"
	EventFailed  = "load_failed"
	EventSkipped = "load_skipped"
	EventEvicted = "evicted"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + family and optional fields via key/values.
type Event struct {
	Name   string
	Family string
	Fields map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }
