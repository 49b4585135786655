package core

import "errors"

// Drop reasons reported to the Observer.
const (
	DropMalformed   = "malformed"
	DropUnknown     = "unknown"
	DropClosed      = "session_closed"
	DropRateLimited = "rate_limited"
)

var (
	// ErrMalformedCommand is returned when an inbound command lacks required fields.
	ErrMalformedCommand = errors.New("malformed command")
	// ErrInvalidIdentity is returned when connecting without a user id.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrNilConn is returned when connecting without a delivery handle.
	ErrNilConn = errors.New("nil connection handle")
)
