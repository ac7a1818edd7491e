// Package security provides password hashing and verification.
package security

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// HashPassword hashes a plaintext password with argon2id and returns the
// encoded hash string.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword checks a plaintext password against an encoded argon2
// hash. Returns (true, nil) on match and (false, nil) on mismatch.
func VerifyPassword(password, hash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(hash))
}
