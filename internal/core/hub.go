package core

import (
	"time"

	"github.com/rs/zerolog"
)

// Hub owns presence, rooms and routing for every connection in the process.
type Hub struct {
	presence *Presence
	rooms    *Rooms
	router   *Router
	obs      Observer
	log      *zerolog.Logger
	now      func() time.Time
}

// Option configures a Hub.
type Option func(*Hub)

// WithObserver reports hub activity to obs.
func WithObserver(obs Observer) Option {
	return func(h *Hub) {
		if obs != nil {
			h.obs = obs
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHub creates a new hub instance.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		obs: NopObserver{},
		log: &nop,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.presence = NewPresence()
	h.rooms = NewRooms(h.obs)
	h.router = NewRouter(h.presence, h.rooms, h.obs, h.log, h.now)
	return h
}

// Connect establishes a session for an already verified identity: the handle
// is registered in presence and joined to the user's personal room.
func (h *Hub) Connect(identity Identity, conn *Conn) (*Session, error) {
	if identity.ID == "" {
		return nil, ErrInvalidIdentity
	}
	if conn == nil {
		return nil, ErrNilConn
	}

	s := newSession(identity, conn, h.now())
	h.presence.Register(identity.ID, conn)
	h.rooms.Join(s, UserRoom(identity.ID))
	h.obs.SessionOpened()

	h.log.Info().
		Str("user_id", identity.ID).
		Str("username", identity.Username).
		Str("conn_id", conn.ID).
		Msg("user connected")
	return s, nil
}

// Dispatch routes one inbound command from s.
func (h *Hub) Dispatch(s *Session, cmd *Command) {
	h.router.Dispatch(s, cmd)
}

// Disconnect tears the session down: every joined room is left and the handle
// is unregistered. Calling it more than once is a no-op.
func (h *Hub) Disconnect(s *Session) {
	if s == nil {
		return
	}
	rooms, first := s.close()
	if !first {
		return
	}

	for _, room := range rooms {
		h.rooms.Leave(s, room)
	}
	h.presence.Unregister(s.Identity.ID, s.Conn)
	h.obs.SessionClosed()

	h.log.Info().
		Str("user_id", s.Identity.ID).
		Str("username", s.Identity.Username).
		Str("conn_id", s.Conn.ID).
		Dur("duration", h.now().Sub(s.ConnectedAt)).
		Msg("user disconnected")
}

// Reject records a connection attempt refused before a session existed.
func (h *Hub) Reject(reason string) {
	h.obs.ConnectionRejected(reason)
}

// Drop records an inbound frame that never became a command.
func (h *Hub) Drop(reason string) {
	h.obs.CommandDropped(reason)
}

// IsOnline reports whether the user has a live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

// ConnectionCount returns the number of live connections of a user.
func (h *Hub) ConnectionCount(userID string) int {
	return h.presence.ConnectionCount(userID)
}

// OnlineUsers returns the number of online users.
func (h *Hub) OnlineUsers() int {
	return h.presence.OnlineCount()
}

// Connections returns the number of live connections.
func (h *Hub) Connections() int {
	return h.presence.TotalConnections()
}

// Presence exposes the registry.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Rooms exposes the room manager.
func (h *Hub) Rooms() *Rooms {
	return h.rooms
}
