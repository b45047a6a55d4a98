package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost matches bcrypt's conventional work factor of 10 rounds.
const hashCost = 10

// HashPassword produces a salted bcrypt digest. The digest encodes algorithm,
// cost, and salt, so verification needs nothing beyond the digest itself.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the digest. A mismatch or
// malformed digest is false, never an error.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
