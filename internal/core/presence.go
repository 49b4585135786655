package core

import "sync"

type registration struct {
	conn *Conn
	seq  uint64
}

// Presence is the authoritative map from user id to that user's live
// connection handles. A user is online while at least one handle is registered.
type Presence struct {
	mu    sync.RWMutex
	users map[string]map[string]registration
	seq   uint64
}

// NewPresence constructs an empty registry.
func NewPresence() *Presence {
	return &Presence{users: make(map[string]map[string]registration)}
}

// Register adds conn to the user's handle set. Registering a handle again
// marks it as the most recent one.
func (p *Presence) Register(userID string, conn *Conn) {
	if userID == "" || conn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.users[userID]
	if !ok {
		conns = make(map[string]registration)
		p.users[userID] = conns
	}
	p.seq++
	conns[conn.ID] = registration{conn: conn, seq: p.seq}
}

// Unregister removes conn from the user's handle set and drops the user once
// no handle remains. Returns true if the handle was registered.
func (p *Presence) Unregister(userID string, conn *Conn) bool {
	if conn == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.users[userID]
	if !ok {
		return false
	}
	if _, exists := conns[conn.ID]; !exists {
		return false
	}
	delete(conns, conn.ID)
	if len(conns) == 0 {
		delete(p.users, userID)
	}
	return true
}

// IsOnline reports whether the user has at least one registered handle.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[userID]
	return ok
}

// HandleOf returns the most recently registered handle of the user.
func (p *Presence) HandleOf(userID string) (*Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var latest registration
	for _, reg := range p.users[userID] {
		if reg.seq > latest.seq {
			latest = reg
		}
	}
	return latest.conn, latest.conn != nil
}

// Handles returns every registered handle of the user.
func (p *Presence) Handles(userID string) []*Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()

	conns := p.users[userID]
	out := make([]*Conn, 0, len(conns))
	for _, reg := range conns {
		out = append(out, reg.conn)
	}
	return out
}

// ConnectionCount returns how many handles the user has registered.
func (p *Presence) ConnectionCount(userID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users[userID])
}

// OnlineCount returns the number of online users.
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}

// TotalConnections returns the number of registered handles across all users.
func (p *Presence) TotalConnections() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	total := 0
	for _, conns := range p.users {
		total += len(conns)
	}
	return total
}
