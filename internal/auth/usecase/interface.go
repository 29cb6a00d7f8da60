// Package usecase defines business logic interfaces for BYOC authentication.
package usecase

import (
	"context"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

// TokenUseCase issues access tokens to the configured client and validates
// bearer tokens presented on protected endpoints.
type TokenUseCase interface {
	// Issue checks the grant type and client credentials and returns a signed token.
	// Returns ErrUnsupportedGrantType before looking at credentials, then ErrInvalidClient.
	Issue(
		ctx context.Context,
		issueTokenInput *authDomain.IssueTokenInput,
	) (*authDomain.IssueTokenOutput, error)

	// Authenticate validates a bearer token and returns its parsed form.
	// Any failure is reported as ErrInvalidToken.
	Authenticate(ctx context.Context, bearerToken string) (*authDomain.AccessToken, error)
}
