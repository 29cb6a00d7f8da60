// Package service provides authentication-related services for secret generation and token management.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
)

// secretService implements SecretService with crypto/rand and crypto/subtle.
type secretService struct{}

// GenerateSecret creates a new cryptographically secure random secret.
func (s *secretService) GenerateSecret(size int) (string, error) {
	randomBytes := make([]byte, size)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random secret")
	}

	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// CompareSecret performs a constant-time comparison between two secrets.
// Both values are hashed first so the comparison does not leak the expected length.
func (s *secretService) CompareSecret(presented string, expected string) bool {
	if expected == "" {
		return false
	}
	presentedSum := sha256.Sum256([]byte(presented))
	expectedSum := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(presentedSum[:], expectedSum[:]) == 1
}

// NewSecretService creates a new SecretService instance.
func NewSecretService() SecretService {
	return &secretService{}
}
