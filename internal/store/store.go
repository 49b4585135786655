package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// User is the projection of an application user needed to authenticate
// connections. The record itself is owned by the CRUD service.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserStore handles user projection persistence.
type UserStore interface {
	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// UpsertUser inserts a user or updates its username.
	UpsertUser(ctx context.Context, id, username string) (*User, error)

	// DeleteUser removes a user. Deleting an absent user is not an error.
	DeleteUser(ctx context.Context, id string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
