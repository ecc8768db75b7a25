// Package auth implements the stateless token subsystem: an HMAC-signed
// token codec and the per-request middleware that turns a bearer token
// into a request-scoped session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"github.com/bucketlist-social/bucketlist/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// SecretLength is the required size of the signing secret in bytes.
// Shorter or longer secrets are rejected at startup instead of being
// silently padded or truncated.
const SecretLength = 32

// expirySkew is how far past its nominal expiration a token is still
// accepted. The tolerance is one-sided: there is no leniency for tokens
// checked before their issuance instant.
const expirySkew = 60 * time.Second

// Claims is the signed payload of an access token. UID duplicates the
// subject as a numeric identity so the per-request filter can resolve the
// principal without a username lookup.
type Claims struct {
	jwt.RegisteredClaims
	UID int64 `json:"uid"`
}

// Codec converts between principals and signed token strings. It is
// stateless beyond the secret and TTL fixed at construction, so a single
// instance is safe for concurrent use by any number of requests.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a Codec. The secret must be exactly SecretLength bytes
// and the TTL positive; both are startup-fatal misconfigurations.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) != SecretLength {
		return nil, fmt.Errorf("signing secret must be exactly %d bytes, got %d", SecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	s := make([]byte, SecretLength)
	copy(s, secret)
	return &Codec{secret: s, ttl: ttl}, nil
}

// Issue mints a signed token for the user, valid from now until now+ttl.
func (c *Codec) Issue(user *models.User, now time.Time) (string, error) {
	if user == nil || user.ID <= 0 || user.Username == "" {
		return "", fmt.Errorf("cannot issue token: incomplete principal")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UID: user.ID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// ParseClaims verifies the token's structure, signature, and validity
// window against the real clock and returns its claims. Failures map to
// common.ErrMalformedToken, common.ErrSignatureInvalid, or
// common.ErrTokenExpired.
func (c *Codec) ParseClaims(tokenString string) (*Claims, error) {
	return c.parseAt(tokenString, time.Now())
}

// Validate checks that the token is well-formed, correctly signed, inside
// its validity window at now, and bound to the given user. It returns nil
// only when every check passes.
func (c *Codec) Validate(tokenString string, user *models.User, now time.Time) error {
	claims, err := c.parseAt(tokenString, now)
	if err != nil {
		return err
	}
	if user == nil || claims.UID != user.ID || claims.Subject != user.Username {
		return common.ErrPrincipalMismatch
	}
	return nil
}

// Verify is the boolean form of Validate used by the per-request filter.
func (c *Codec) Verify(tokenString string, user *models.User, now time.Time) bool {
	return c.Validate(tokenString, user, now) == nil
}

// Refresh mints a new token carrying the same subject and uid as the old
// one, with a fresh issuance instant. The old token's signature must
// verify but its expiration is not re-checked: the caller is expected to
// have authenticated the current request already. It serves callers that
// hold only the old token string; a caller with the live principal in
// hand (like the issuance service) re-issues via Issue instead.
func (c *Codec) Refresh(oldToken string, now time.Time) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(oldToken, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", mapTokenError(err)
	}
	if !token.Valid {
		return "", common.ErrSignatureInvalid
	}
	if claims.UID <= 0 || claims.Subject == "" {
		return "", common.ErrMalformedToken
	}

	fresh := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UID: claims.UID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, fresh).SignedString(c.secret)
}

func (c *Codec) parseAt(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(expirySkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if !token.Valid {
		return nil, common.ErrSignatureInvalid
	}
	// A signed token without an identity is useless to us.
	if claims.UID <= 0 || claims.Subject == "" {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	return c.secret, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrSignatureInvalid
	default:
		return common.ErrMalformedToken
	}
}
