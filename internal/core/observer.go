package core

// Observer receives counters about what the core does. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	SessionOpened()
	SessionClosed()
	ConnectionRejected(reason string)
	CommandHandled(kind CommandKind)
	CommandDropped(reason string)
	EventsDelivered(kind EventKind, delivered, dropped int)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) SessionOpened() {}
func (NopObserver) SessionClosed() {}
func (NopObserver) ConnectionRejected(string) {}
func (NopObserver) CommandHandled(CommandKind) {}
func (NopObserver) CommandDropped(string) {}
func (NopObserver) EventsDelivered(EventKind, int, int) {}
