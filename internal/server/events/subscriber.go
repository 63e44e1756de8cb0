package events

// Subscriber consumes events for one transport.
type Subscriber interface {
	// Send delivers an event. It must not block.
	Send(Event) error
	Close() error
}
