// Package session carries the authenticated user through service calls.
// The HTTP layer builds a Session from the access token and passes it down
// explicitly; nothing in the process holds a "current user".
package session

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

type Session struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

func (s Session) IsOwner() bool { return s.Role == RoleOwner }

// System is used by background jobs that act without a logged-in user.
func System() Session {
	return Session{UserID: uuid.Nil, Username: "system", Role: RoleOwner}
}

type ctxKey struct{}

// WithSession stores s on ctx for code paths that only receive a context,
// such as job handlers.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the session stored on ctx.
func From(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
