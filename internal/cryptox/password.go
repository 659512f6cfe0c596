// Package cryptox provides password hashing for account credentials.
package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
// The salt is generated and embedded into the digest by bcrypt itself.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(b), nil
}

// CheckPassword verifies a plaintext password against a stored bcrypt digest.
// A mismatch returns (false, nil); only a malformed or corrupt digest
// produces an error. bcrypt's comparison is constant-time.
func CheckPassword(password string, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("error checking password: %w", err)
}
