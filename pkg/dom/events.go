package dom

// Event is a dispatched document event.
type Event struct {
	Type   string
	Target *Node

	// Detail carries event payload fields (input value, key, coordinates).
	Detail map[string]any
}

// Handler is an event listener callback.
type Handler func(*Event)

// On registers a listener for the given event type on this node.
func (n *Node) On(event string, h Handler) {
	if h == nil {
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]Handler)
	}
	n.listeners[event] = append(n.listeners[event], h)
}

// Off removes all listeners for the given event type.
func (n *Node) Off(event string) {
	delete(n.listeners, event)
}

// Dispatch delivers an event to this node's listeners.
// The event's Target is set to n if unset.
func (n *Node) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = n
	}
	for _, h := range n.listeners[ev.Type] {
		h(ev)
	}
}

// HasListener reports whether the node has any listener for the event type.
func (n *Node) HasListener(event string) bool {
	return len(n.listeners[event]) > 0
}
