package core

import (
	"sort"
	"sync"
	"time"
)

// Identity is the verified user behind a connection.
type Identity struct {
	ID       string
	Username string
}

// Session is the state attached to one live connection for its lifetime.
type Session struct {
	Identity    Identity
	Conn        *Conn
	ConnectedAt time.Time

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
	once   sync.Once
}

func newSession(identity Identity, conn *Conn, now time.Time) *Session {
	return &Session{
		Identity:    identity,
		Conn:        conn,
		ConnectedAt: now,
		rooms:       make(map[string]struct{}),
	}
}

// Rooms returns the rooms the session has joined, sorted.
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

// InRoom reports whether the session has joined roomID.
func (s *Session) InRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[roomID]
	return ok
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) addRoom(roomID string) {
	s.mu.Lock()
	s.rooms[roomID] = struct{}{}
	s.mu.Unlock()
}

func (s *Session) removeRoom(roomID string) {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
}

// close marks the session closed and returns the rooms it still belonged to.
// Only the first call runs; later calls return nil.
func (s *Session) close() (rooms []string, first bool) {
	s.once.Do(func() {
		first = true
		rooms = s.Rooms()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return rooms, first
}
