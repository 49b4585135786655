package core

// DefaultSendBuffer is the outbound queue length used when none is configured.
const DefaultSendBuffer = 32

// Conn is the delivery handle of one live connection. The transport drains
// Events; the core only ever queues onto it.
type Conn struct {
	ID     string
	Events chan *Event
}

// NewConn constructs a handle with an initialized outbound queue.
func NewConn(id string, buffer int) *Conn {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Conn{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// Send queues an event without blocking. It reports false when the queue is
// full and the event was dropped.
func (c *Conn) Send(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
