package events

// Emitter is implemented by anything that accepts events. Producers depend on
// this interface rather than on the Handler directly.
type Emitter interface {
	// Emit registers the event for background processing. It never fails.
	Emit(event Event)
}

// EmitterFunc adapts an ordinary function to the Emitter interface.
type EmitterFunc func(event Event)

// Emit calls f(event).
func (f EmitterFunc) Emit(event Event) {
	f(event)
}

// Ensure Handler implements Emitter
var _ Emitter = (*Handler)(nil)
