// Package auth implements credential checks, user auto-provisioning and
// the signed tokens handed out by the login endpoint.
package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/cropsevai/cropsevai-hub/internal/errors"
)

// HashPassword hashes password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, bcrypt.DefaultCost)
}

// HashPasswordWithCost hashes password with bcrypt at the given cost.
// Passwords longer than bcrypt's 72 byte input limit are rejected as a
// validation error.
func HashPasswordWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.New(err).
				Component("auth").
				Category(errors.CategoryValidation).
				Build()
		}
		return "", errors.New(err).
			Component("auth").
			Category(errors.CategorySystem).
			Context("operation", "hash_password").
			Build()
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the bcrypt hash. The
// comparison is constant time.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when no account exists so that unknown
// emails cost the same bcrypt work as wrong passwords.
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("cropsevai-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(h)
})
