package auth

import (
	"context"

	"github.com/bucketlist-social/bucketlist/internal/server/models"
)

// Session associates an incoming request with its verified principal.
// It lives only for the duration of a single request.
type Session struct {
	User      *models.User
	Authority models.Role
}

// NewSession derives a session from a verified principal.
func NewSession(user *models.User) *Session {
	return &Session{User: user, Authority: user.Role}
}

type sessionKey struct{}

// WithSession returns a child context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext extracts the session established by the middleware,
// if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}
