package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var (
	testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	connSeq atomic.Int64
)

func newTestHub(opts ...Option) *Hub {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewHub(opts...)
}

func connect(t *testing.T, hub *Hub, userID, username string) *Session {
	t.Helper()

	s, err := hub.Connect(Identity{ID: userID, Username: username}, NewConn(fmt.Sprintf("%s-%d", userID, connSeq.Add(1)), 16))
	if err != nil {
		t.Fatalf("connect %s: %v", userID, err)
	}
	return s
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// assertNoEvents relies on dispatch being synchronous: anything routed to c
// is already queued when Dispatch returns.
func assertNoEvents(t *testing.T, c *Conn) {
	t.Helper()

	if n := len(c.Events); n != 0 {
		ev := <-c.Events
		t.Fatalf("expected no events on %s, got %d (first: %v)", c.ID, n, ev.Kind)
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	opened    int
	closed    int
	rejected  []string
	handled   []CommandKind
	dropped   []string
	delivered map[EventKind]int
	lost      map[EventKind]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		delivered: make(map[EventKind]int),
		lost:      make(map[EventKind]int),
	}
}

func (o *recordingObserver) SessionOpened() {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()
}

func (o *recordingObserver) SessionClosed() {
	o.mu.Lock()
	o.closed++
	o.mu.Unlock()
}

func (o *recordingObserver) ConnectionRejected(reason string) {
	o.mu.Lock()
	o.rejected = append(o.rejected, reason)
	o.mu.Unlock()
}

func (o *recordingObserver) CommandHandled(kind CommandKind) {
	o.mu.Lock()
	o.handled = append(o.handled, kind)
	o.mu.Unlock()
}

func (o *recordingObserver) CommandDropped(reason string) {
	o.mu.Lock()
	o.dropped = append(o.dropped, reason)
	o.mu.Unlock()
}

func (o *recordingObserver) EventsDelivered(kind EventKind, delivered, dropped int) {
	o.mu.Lock()
	o.delivered[kind] += delivered
	o.lost[kind] += dropped
	o.mu.Unlock()
}
