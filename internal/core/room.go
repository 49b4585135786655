package core

import "sync"

const (
	userRoomPrefix = "user:"
	pinRoomPrefix  = "pin:"
)

// UserRoom returns the personal notification room of a user.
func UserRoom(userID string) string {
	return userRoomPrefix + userID
}

// PinRoom returns the viewers room of a pin.
func PinRoom(pinID string) string {
	return pinRoomPrefix + pinID
}

// Room groups connections subscribed to the same topic.
type Room struct {
	Name  string
	conns map[*Conn]struct{}
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		Name:  name,
		conns: make(map[*Conn]struct{}),
	}
}

// Add inserts a connection into the room. Returns true if newly added.
func (r *Room) Add(c *Conn) bool {
	if _, exists := r.conns[c]; exists {
		return false
	}
	r.conns[c] = struct{}{}
	return true
}

// Remove deletes a connection from the room. Returns true if removed.
func (r *Room) Remove(c *Conn) bool {
	if _, exists := r.conns[c]; !exists {
		return false
	}
	delete(r.conns, c)
	return true
}

// Broadcast queues an event on every member except exclude.
func (r *Room) Broadcast(event *Event, exclude *Conn) (delivered, dropped int) {
	for c := range r.conns {
		if c == exclude {
			continue
		}
		if c.Send(event) {
			delivered++
		} else {
			// Slow consumer.
			dropped++
		}
	}
	return delivered, dropped
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.conns) == 0
}

// Rooms is the delivery fabric: named groups of connections. Rooms are
// created on first join and removed once empty.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	obs   Observer
}

// NewRooms constructs an empty room manager reporting deliveries to obs.
func NewRooms(obs Observer) *Rooms {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Rooms{
		rooms: make(map[string]*Room),
		obs:   obs,
	}
}

// Join adds the session's connection to roomID. Joining twice is a no-op.
// A closed session cannot join anything.
func (r *Rooms) Join(s *Session, roomID string) bool {
	if s == nil || roomID == "" || s.Closed() {
		return false
	}

	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		room = NewRoom(roomID)
		r.rooms[roomID] = room
	}
	added := room.Add(s.Conn)
	r.mu.Unlock()

	s.addRoom(roomID)
	return added
}

// Leave removes the session's connection from roomID. Leaving a room that was
// never joined is a no-op.
func (r *Rooms) Leave(s *Session, roomID string) bool {
	if s == nil {
		return false
	}

	r.mu.Lock()
	removed := false
	if room, ok := r.rooms[roomID]; ok {
		removed = room.Remove(s.Conn)
		if room.Empty() {
			delete(r.rooms, roomID)
		}
	}
	r.mu.Unlock()

	s.removeRoom(roomID)
	return removed
}

// BroadcastToRoom delivers event to every member of roomID except exclude,
// at most once each and without waiting. Returns the number of members that
// accepted the event.
func (r *Rooms) BroadcastToRoom(roomID string, exclude *Conn, event *Event) int {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	var delivered, dropped int
	if ok {
		delivered, dropped = room.Broadcast(event, exclude)
	}
	r.mu.RUnlock()

	if ok {
		r.obs.EventsDelivered(event.Kind, delivered, dropped)
	}
	return delivered
}

// SendToUser delivers event to every connection in the user's personal room.
func (r *Rooms) SendToUser(userID string, event *Event) int {
	return r.BroadcastToRoom(UserRoom(userID), nil, event)
}

// Members returns the connections currently in roomID.
func (r *Rooms) Members(roomID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Conn, 0, len(room.conns))
	for c := range room.conns {
		out = append(out, c)
	}
	return out
}

// Size returns the number of connections in roomID.
func (r *Rooms) Size(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if room, ok := r.rooms[roomID]; ok {
		return len(room.conns)
	}
	return 0
}

// Count returns the number of non-empty rooms.
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
