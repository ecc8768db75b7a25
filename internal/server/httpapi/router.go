package httpapi

import (
	"net/http"

	"github.com/bucketlist-social/bucketlist/internal/logging"
	"github.com/bucketlist-social/bucketlist/internal/server/auth"
	"github.com/go-chi/chi/v5"
)

// NewRouter assembles the full middleware chain and route table. The auth
// middleware runs on every request; RequireSession guards only the routes
// that need an authenticated caller.
func NewRouter(h *Handler, authMW *auth.Middleware, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(authMW.Handler)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Post("/auth/refresh", h.Refresh)
			r.Get("/users/me", h.Me)
		})
	})

	return r
}
