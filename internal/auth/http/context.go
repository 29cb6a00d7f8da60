// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

// accessTokenKey is a context key type for storing the authenticated access token.
type accessTokenKey struct{}

// WithAccessToken stores an authenticated access token in the context.
// This is called by the bearer middleware after successful token validation.
func WithAccessToken(ctx context.Context, token *authDomain.AccessToken) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// GetAccessToken retrieves the authenticated access token from the context.
// Returns (token, true) if present, or (nil, false) if no token was set.
func GetAccessToken(ctx context.Context) (*authDomain.AccessToken, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(*authDomain.AccessToken)
	return token, ok
}
