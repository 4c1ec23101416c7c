package store

import (
	"context"
	"time"
)

// User represents a registered or guest user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	SessionID    string // guest session tracking
	CreatedAt    time.Time
}

// UserStore persists users for the auth gateway. Rooms and messages are
// deliberately absent: all room state lives in process memory and dies
// with it.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	CreateGuestUser(ctx context.Context, sessionID string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// Store is the full persistence contract.
type Store interface {
	UserStore
	Close() error
}
