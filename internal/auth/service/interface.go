// Package service provides technical services for authentication operations.
//
// This package implements client secret generation and comparison, and the
// signing and parsing of stateless access tokens.
package service

import (
	"time"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

// SecretService defines operations for client secret generation and comparison.
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret of
	// the given size in bytes, base64 URL-encoded.
	GenerateSecret(size int) (string, error)

	// CompareSecret reports whether the presented secret equals the expected one.
	// The comparison is constant-time with respect to the secret contents.
	CompareSecret(presented string, expected string) bool
}

// TokenService defines operations for signing and parsing access tokens.
// Tokens carry their own subject and expiry so validation needs no storage.
type TokenService interface {
	// Sign produces a signed token for subject valid between issuedAt and expiresAt.
	Sign(subject string, issuedAt, expiresAt time.Time) (string, error)

	// Parse verifies the token signature and returns its claims.
	// Expiry is checked against the service clock.
	Parse(tokenString string) (*authDomain.AccessToken, error)
}
