package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"github.com/bucketlist-social/bucketlist/internal/logging"
	"github.com/bucketlist-social/bucketlist/internal/server/models"
)

// PrincipalSource resolves the numeric identity carried in a token to a
// live principal. Implemented by the users repository.
type PrincipalSource interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware is the per-request authentication gate. It inspects the
// Authorization header and, when the token checks out, attaches a Session
// to the request context. It never rejects a request itself: requests
// without a valid token simply continue without a session, and route-level
// authorization decides what that means.
type Middleware struct {
	codec  *Codec
	users  PrincipalSource
	logger logging.Logger
	now    func() time.Time
}

func NewMiddleware(codec *Codec, users PrincipalSource, logger logging.Logger) *Middleware {
	return &Middleware{
		codec:  codec,
		users:  users,
		logger: logger.With("module", "auth_middleware"),
		now:    time.Now,
	}
}

// Handler wraps next with the authentication decision.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()

		claims, err := m.codec.ParseClaims(token)
		if err != nil {
			m.logger.Debug(ctx, "token rejected", "reason", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		if _, exists := SessionFromContext(ctx); exists {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetByID(ctx, claims.UID)
		if err != nil {
			// An unknown principal is an authentication outcome; a
			// storage failure is a failure of this request.
			if errors.Is(err, common.ErrorNotFound) {
				m.logger.Debug(ctx, "token principal not found", "uid", claims.UID)
				next.ServeHTTP(w, r)
				return
			}
			m.logger.Error(ctx, "principal lookup failed", "uid", claims.UID, "error", err.Error())
			http.Error(w, common.ErrorInternal.Error(), http.StatusInternalServerError)
			return
		}

		if m.codec.Verify(token, user, m.now()) {
			ctx = WithSession(ctx, NewSession(user))
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// RequireSession is the authorization gate for protected routes: requests
// that reached it without an established session are rejected.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			http.Error(w, common.ErrorUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(h, common.BearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}
