// Package gateway abstracts the identity provider behind a small interface so
// the rest of the application never talks to tokens or password hashes
// directly.
package gateway

import (
	"context"
	"time"
)

// Session is an authenticated user's live session.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventType names a session lifecycle transition.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event is delivered to subscribers whenever a session starts or ends.
// Session is nil for EventSignedOut.
type Event struct {
	Type    EventType
	Session *Session
}

// Unsubscribe detaches a subscriber. Safe to call more than once.
type Unsubscribe func()

// IdentityGateway is the authentication surface of the application.
//
// GetSession returns (nil, nil) for a missing, malformed, expired, or revoked
// token; an error only signals a backend failure.
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*Session, error)
	Subscribe(fn func(Event)) Unsubscribe
}
