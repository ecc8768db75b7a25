// Package sessions contains the issuance service: the three entry points
// that mint or renew access tokens (login, registration, refresh).
package sessions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"github.com/bucketlist-social/bucketlist/internal/logging"
	"github.com/bucketlist-social/bucketlist/internal/server/auth"
	"github.com/bucketlist-social/bucketlist/internal/server/models"
	"github.com/bucketlist-social/bucketlist/internal/server/repositories/users"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// bcrypt ignores password bytes past 72.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// Credentials identifies a user at login by exactly one of username or
// email, plus the plaintext password.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Registration carries the fields needed to create an account.
type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Result is what every issuance entry point returns: the token and a
// redacted view of its principal.
type Result struct {
	Token string
	User  models.Summary
}

// Service orchestrates login, registration, and refresh.
type Service struct {
	repo     users.Repository
	codec    *auth.Codec
	verifier CredentialVerifier
	hasher   PasswordHasher
	logger   logging.Logger
	now      func() time.Time
}

func NewService(repo users.Repository, codec *auth.Codec, v *BcryptVerifier, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		codec:    codec,
		verifier: v,
		hasher:   v,
		logger:   logger.With("module", "sessions"),
		now:      time.Now,
	}
}

// Login resolves the principal, verifies the password, and mints a token.
// Unknown identifiers and wrong passwords are indistinguishable to the
// caller: both surface as common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Result, error) {
	user, err := s.resolve(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.Verify(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return s.issue(ctx, user)
}

// Register validates the registration, persists a new principal with the
// default role, and logs it in.
func (s *Service) Register(ctx context.Context, reg Registration) (*Result, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: username or email is taken", common.ErrorAlreadyExists)
		}
		s.logger.Error(ctx, "user creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return s.issue(ctx, user)
}

// Refresh re-issues a token for the already-authenticated session. A nil
// session means the caller skipped the authentication filter.
func (s *Service) Refresh(ctx context.Context, session *auth.Session) (string, error) {
	if session == nil || session.User == nil {
		return "", common.ErrorUnauthorized
	}

	token, err := s.codec.Issue(session.User, s.now())
	if err != nil {
		s.logger.Error(ctx, "token refresh failed", "uid", session.User.ID, "error", err.Error())
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *Service) resolve(ctx context.Context, creds Credentials) (*models.User, error) {
	if (creds.Username == "") == (creds.Email == "") {
		return nil, fmt.Errorf("%w: exactly one of username or email is required", common.ErrorValidation)
	}

	var (
		user *models.User
		err  error
	)
	if creds.Username != "" {
		user, err = s.repo.GetByUsername(ctx, creds.Username)
	} else {
		user, err = s.repo.GetByEmail(ctx, creds.Email)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "principal lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*Result, error) {
	token, err := s.codec.Issue(user, s.now())
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "uid", user.ID, "error", err.Error())
		return nil, common.ErrorInternal
	}
	return &Result{Token: token, User: user.Summary()}, nil
}

func validateRegistration(reg Registration) error {
	if reg.Password != reg.PasswordConfirm {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}
	if !usernamePattern.MatchString(reg.Username) {
		return fmt.Errorf("%w: username must be 3-32 characters of letters, digits, '_', '.' or '-'", common.ErrorValidation)
	}
	if reg.Email != "" && !emailPattern.MatchString(reg.Email) {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	if len(reg.Password) < minPasswordLength || len(reg.Password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d characters", common.ErrorValidation, minPasswordLength, maxPasswordLength)
	}
	return nil
}
