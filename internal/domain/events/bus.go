package events

// Handler consumes events. A returned error is logged, never retried.
type Handler interface {
	HandleEvent(event Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(event Event) error

// HandleEvent implements Handler
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// EventBus fans events out to subscribers asynchronously
type EventBus interface {
	// Subscribe registers handler for eventType and returns an unsubscribe func
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())
	Publish(event Event)
	// Close stops accepting events and waits for in-flight handlers
	Close()
}
