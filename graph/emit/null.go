package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it when event output is not wanted without changing call sites:
//
//	m, _ := graph.NewMachine(ec, graph.WithEmitter(emit.NewNullEmitter()))
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
