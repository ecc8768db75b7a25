// Package httpapi exposes the authentication endpoints over HTTP and
// hosts the shared request middleware (request IDs, logging).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"github.com/bucketlist-social/bucketlist/internal/logging"
	"github.com/bucketlist-social/bucketlist/internal/server/auth"
	"github.com/bucketlist-social/bucketlist/internal/server/models"
	"github.com/bucketlist-social/bucketlist/internal/server/sessions"
)

// SessionService is the issuance surface the handlers depend on.
type SessionService interface {
	Login(ctx context.Context, creds sessions.Credentials) (*sessions.Result, error)
	Register(ctx context.Context, reg sessions.Registration) (*sessions.Result, error)
	Refresh(ctx context.Context, session *auth.Session) (string, error)
}

type Handler struct {
	sessions SessionService
	logger   logging.Logger
}

func NewHandler(s SessionService, logger logging.Logger) *Handler {
	return &Handler{sessions: s, logger: logger.With("module", "httpapi")}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  models.Summary `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: invalid request body", common.ErrorValidation))
		return
	}

	result, err := h.sessions.Login(r.Context(), sessions.Credentials{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, authResponse{Token: result.Token, User: result.User})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: invalid request body", common.ErrorValidation))
		return
	}

	result, err := h.sessions.Register(r.Context(), sessions.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, authResponse{Token: result.Token, User: result.User})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	token, err := h.sessions.Refresh(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Me returns the current principal. It exists mostly as the smallest
// possible consumer of the session context.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.writeError(w, r, common.ErrorUnauthorized)
		return
	}
	h.writeJSON(w, http.StatusOK, session.User.Summary())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := common.ErrorInternal.Error()

	switch {
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
		msg = common.ErrorUnauthorized.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
		msg = common.ErrorNotFound.Error()
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}

	h.writeJSON(w, status, errorResponse{Error: msg})
}
