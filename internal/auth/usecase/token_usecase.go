// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	authService "github.com/allisson/byoc-relay/internal/auth/service"
	"github.com/allisson/byoc-relay/internal/config"
)

// tokenUseCase implements TokenUseCase for the single configured BYOC client.
type tokenUseCase struct {
	config        *config.Config
	secretService authService.SecretService
	tokenService  authService.TokenService
	now           func() time.Time
}

// Issue authenticates the client and generates a new access token.
//
// Both the client id and the secret are compared in constant time and both
// comparisons always run, so a wrong id and a wrong secret are indistinguishable.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	issueTokenInput *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	if issueTokenInput.GrantType != authDomain.GrantTypeClientCredentials {
		return nil, authDomain.ErrUnsupportedGrantType
	}

	idMatches := t.secretService.CompareSecret(issueTokenInput.ClientID, t.config.ClientID)
	secretMatches := t.secretService.CompareSecret(issueTokenInput.ClientSecret, t.config.ClientSecret)
	if !idMatches || !secretMatches {
		return nil, authDomain.ErrInvalidClient
	}

	issuedAt := t.now().UTC()
	expiresAt := issuedAt.Add(t.config.AuthTokenExpiration)

	signed, err := t.tokenService.Sign(t.config.ClientID, issuedAt, expiresAt)
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		AccessToken: signed,
		TokenType:   authDomain.TokenTypeBearer,
		ExpiresIn:   int64(t.config.AuthTokenExpiration / time.Second),
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate validates a bearer token: signature, expiry and subject.
func (t *tokenUseCase) Authenticate(ctx context.Context, bearerToken string) (*authDomain.AccessToken, error) {
	if bearerToken == "" {
		return nil, authDomain.ErrInvalidToken
	}

	token, err := t.tokenService.Parse(bearerToken)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	if token.IsExpired(t.now()) {
		return nil, authDomain.ErrInvalidToken
	}

	if !t.secretService.CompareSecret(token.Subject, t.config.ClientID) {
		return nil, authDomain.ErrInvalidToken
	}

	return token, nil
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
// A nil now uses time.Now.
func NewTokenUseCase(
	config *config.Config,
	secretService authService.SecretService,
	tokenService authService.TokenService,
	now func() time.Time,
) TokenUseCase {
	if now == nil {
		now = time.Now
	}
	return &tokenUseCase{
		config:        config,
		secretService: secretService,
		tokenService:  tokenService,
		now:           now,
	}
}
