package sessions

import (
	"errors"
	"testing"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := &BcryptVerifier{Cost: bcrypt.MinCost}

	hash, err := v.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash equals plaintext")
	}

	if err := v.Verify(hash, "correct-horse"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
}

func TestBcryptVerifier_Mismatch(t *testing.T) {
	t.Parallel()

	v := &BcryptVerifier{Cost: bcrypt.MinCost}

	hash, err := v.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if err := v.Verify(hash, "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestBcryptVerifier_MalformedHash(t *testing.T) {
	t.Parallel()

	v := NewBcryptVerifier()

	if err := v.Verify("not-a-bcrypt-hash", "whatever"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("expected ErrorInternal, got %v", err)
	}
}
