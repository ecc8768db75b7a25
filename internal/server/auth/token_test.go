package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"github.com/bucketlist-social/bucketlist/internal/server/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec([]byte(testSecret), ttl)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func testUser() *models.User {
	return &models.User{ID: 1, Username: "alice123", Role: models.RoleUser}
}

func TestNewCodec_SecretLength(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec([]byte("too-short"), time.Hour); err == nil {
		t.Fatal("expected error for short secret, got nil")
	}
	if _, err := NewCodec([]byte(testSecret+"x"), time.Hour); err == nil {
		t.Fatal("expected error for long secret, got nil")
	}
	if _, err := NewCodec([]byte(testSecret), 0); err == nil {
		t.Fatal("expected error for zero ttl, got nil")
	}
	if _, err := NewCodec([]byte(testSecret), time.Hour); err != nil {
		t.Fatalf("unexpected error for valid config: %v", err)
	}
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()
	now := time.Now()

	tok, err := c.Issue(user, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if tok == "" {
		t.Fatal("Issue returned empty token")
	}

	if !c.Verify(tok, user, now) {
		t.Fatal("freshly issued token did not verify")
	}
}

func TestIssue_IncompletePrincipal(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	now := time.Now()

	if _, err := c.Issue(nil, now); err == nil {
		t.Fatal("expected error for nil principal")
	}
	if _, err := c.Issue(&models.User{Username: "noid"}, now); err == nil {
		t.Fatal("expected error for principal without id")
	}
	if _, err := c.Issue(&models.User{ID: 7}, now); err == nil {
		t.Fatal("expected error for principal without username")
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()
	now := time.Now()

	tok, err := c.Issue(user, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	// flip one character of the signature segment
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if c.Verify(tampered, user, now) {
		t.Fatal("tampered token verified")
	}
	if err := c.Validate(tampered, user, now); !errors.Is(err, common.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_TamperedClaims(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()
	now := time.Now()

	tok, err := c.Issue(user, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	claims := []byte(parts[1])
	if claims[0] == 'A' {
		claims[0] = 'B'
	} else {
		claims[0] = 'A'
	}
	tampered := parts[0] + "." + string(claims) + "." + parts[2]

	if c.Verify(tampered, user, now) {
		t.Fatal("token with tampered claims verified")
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	ttl := time.Hour
	c := newTestCodec(t, ttl)
	user := testUser()
	t0 := time.Now()

	tok, err := c.Issue(user, t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"just before expiration", t0.Add(ttl - time.Second), true},
		{"inside skew window", t0.Add(ttl + 59*time.Second), true},
		{"beyond skew window", t0.Add(ttl + 61*time.Second), false},
	}

	for _, tc := range tests {
		if got := c.Verify(tok, user, tc.at); got != tc.want {
			t.Fatalf("%s: Verify = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()
	t0 := time.Now()

	tok, err := c.Issue(user, t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	err = c.Validate(tok, user, t0.Add(2*time.Hour))
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_IdentityBinding(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	alice := testUser()
	bob := &models.User{ID: 2, Username: "bob456", Role: models.RoleUser}
	now := time.Now()

	tok, err := c.Issue(alice, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c.Verify(tok, bob, now) {
		t.Fatal("token issued for alice verified against bob")
	}
	if err := c.Validate(tok, bob, now); !errors.Is(err, common.ErrPrincipalMismatch) {
		t.Fatalf("expected ErrPrincipalMismatch, got %v", err)
	}

	// same id, renamed user
	renamed := &models.User{ID: 1, Username: "alice-renamed", Role: models.RoleUser}
	if c.Verify(tok, renamed, now) {
		t.Fatal("token verified against principal with diverged username")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	c1 := newTestCodec(t, time.Hour)
	c2, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	user := testUser()
	now := time.Now()

	tok, err := c1.Issue(user, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c2.Verify(tok, user, now) {
		t.Fatal("token verified with a different secret")
	}
}

func TestParseClaims_Idempotent(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()

	tok, err := c.Issue(user, time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	first, err := c.ParseClaims(tok)
	if err != nil {
		t.Fatalf("first ParseClaims error: %v", err)
	}
	second, err := c.ParseClaims(tok)
	if err != nil {
		t.Fatalf("second ParseClaims error: %v", err)
	}

	if first.UID != second.UID || first.Subject != second.Subject {
		t.Fatalf("claims differ between parses: %+v vs %+v", first, second)
	}
	if !first.IssuedAt.Equal(second.IssuedAt.Time) || !first.ExpiresAt.Equal(second.ExpiresAt.Time) {
		t.Fatal("timestamps differ between parses")
	}
	if first.UID != user.ID || first.Subject != user.Username {
		t.Fatalf("claims do not match principal: %+v", first)
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		_, err := c.ParseClaims(tok)
		if !errors.Is(err, common.ErrMalformedToken) {
			t.Fatalf("ParseClaims(%q): expected ErrMalformedToken, got %v", tok, err)
		}
	}
}

func TestParseClaims_Expired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()

	tok, err := c.Issue(user, time.Now().Add(-3*time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = c.ParseClaims(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefresh_PreservesIdentity(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	user := testUser()
	t0 := time.Now().Truncate(time.Second)
	t1 := t0.Add(time.Minute)

	tok, err := c.Issue(user, t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	refreshed, err := c.Refresh(tok, t1)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	claims, err := c.ParseClaims(refreshed)
	if err != nil {
		t.Fatalf("ParseClaims error: %v", err)
	}
	if claims.UID != user.ID || claims.Subject != user.Username {
		t.Fatalf("refresh changed identity: %+v", claims)
	}
	if !claims.IssuedAt.After(t0) {
		t.Fatalf("refreshed iat %v not after original %v", claims.IssuedAt.Time, t0)
	}
}

func TestRefresh_ExpiredTokenStillRefreshes(t *testing.T) {
	t.Parallel()

	// The filter has already authenticated the request; Refresh trusts
	// structure and signature only.
	c := newTestCodec(t, time.Hour)
	user := testUser()
	t0 := time.Now().Add(-3 * time.Hour)

	tok, err := c.Issue(user, t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	refreshed, err := c.Refresh(tok, time.Now())
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if !c.Verify(refreshed, user, time.Now()) {
		t.Fatal("refreshed token did not verify")
	}
}

func TestRefresh_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour)
	now := time.Now()

	if _, err := c.Refresh("not-a-jwt", now); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}

	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	tok, err := other.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := c.Refresh(tok, now); err == nil {
		t.Fatal("expected error refreshing token signed with a different secret")
	}
}
