package sessions

import (
	"errors"

	"github.com/bucketlist-social/bucketlist/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a plaintext password against stored
// verification material. The sessions service only ever sees the binary
// outcome, so a failed check cannot reveal which part was wrong.
type CredentialVerifier interface {
	Verify(passwordHash, plaintext string) error
}

// PasswordHasher produces the stored verification material for a new
// password.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// BcryptVerifier implements both interfaces over bcrypt.
type BcryptVerifier struct {
	Cost int
}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{Cost: bcrypt.DefaultCost}
}

func (v *BcryptVerifier) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v *BcryptVerifier) Verify(passwordHash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}
	return nil
}
