package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	authService "github.com/allisson/byoc-relay/internal/auth/service"
	"github.com/allisson/byoc-relay/internal/config"
	apperrors "github.com/allisson/byoc-relay/internal/errors"
)

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Sign(subject string, issuedAt, expiresAt time.Time) (string, error) {
	args := m.Called(subject, issuedAt, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Parse(tokenString string) (*authDomain.AccessToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AccessToken), args.Error(1)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestConfig() *config.Config {
	return &config.Config{
		ClientID:            "cxone-client",
		ClientSecret:        "cxone-secret",
		JWTSecret:           strings.Repeat("j", 32),
		AuthTokenExpiration: 24 * time.Hour,
	}
}

// setupTokenUseCase wires the use case with real secret and token services on a controllable clock.
func setupTokenUseCase(t *testing.T) (TokenUseCase, *testClock, *config.Config) {
	t.Helper()

	cfg := newTestConfig()
	clock := &testClock{now: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	uc := NewTokenUseCase(
		cfg,
		authService.NewSecretService(),
		authService.NewTokenService([]byte(cfg.JWTSecret), clock.Now),
		clock.Now,
	)
	return uc, clock, cfg
}

func validInput() *authDomain.IssueTokenInput {
	return &authDomain.IssueTokenInput{
		GrantType:    authDomain.GrantTypeClientCredentials,
		ClientID:     "cxone-client",
		ClientSecret: "cxone-secret",
	}
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssueTokenWithValidCredentials", func(t *testing.T) {
		uc, clock, _ := setupTokenUseCase(t)

		output, err := uc.Issue(ctx, validInput())

		require.NoError(t, err)
		assert.NotEmpty(t, output.AccessToken)
		assert.Equal(t, "Bearer", output.TokenType)
		assert.Equal(t, int64(86400), output.ExpiresIn)
		assert.Equal(t, clock.now.Add(24*time.Hour), output.ExpiresAt)
	})

	t.Run("Error_UnsupportedGrantTypeEvenWithValidCredentials", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		input := validInput()
		input.GrantType = "password"

		output, err := uc.Issue(ctx, input)

		assert.Nil(t, output)
		assert.ErrorIs(t, err, authDomain.ErrUnsupportedGrantType)
	})

	t.Run("Error_EmptyGrantType", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		input := validInput()
		input.GrantType = ""

		_, err := uc.Issue(ctx, input)
		assert.ErrorIs(t, err, authDomain.ErrUnsupportedGrantType)
	})

	t.Run("Error_WrongSecret", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		input := validInput()
		input.ClientSecret = "wrong"

		output, err := uc.Issue(ctx, input)

		assert.Nil(t, output)
		assert.ErrorIs(t, err, authDomain.ErrInvalidClient)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("Error_WrongClientID", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		input := validInput()
		input.ClientID = "someone-else"

		_, err := uc.Issue(ctx, input)
		assert.ErrorIs(t, err, authDomain.ErrInvalidClient)
	})

	t.Run("Error_SignFailure", func(t *testing.T) {
		cfg := newTestConfig()
		tokenService := &mockTokenService{}
		signErr := errors.New("sign failed")
		tokenService.On("Sign", "cxone-client", mock.Anything, mock.Anything).Return("", signErr).Once()

		uc := NewTokenUseCase(cfg, authService.NewSecretService(), tokenService, nil)

		_, err := uc.Issue(ctx, validInput())
		assert.ErrorIs(t, err, signErr)
		tokenService.AssertExpectations(t)
	})
}

func TestTokenUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssuedTokenIsValid", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		output, err := uc.Issue(ctx, validInput())
		require.NoError(t, err)

		token, err := uc.Authenticate(ctx, output.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, "cxone-client", token.Subject)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		uc, clock, _ := setupTokenUseCase(t)
		output, err := uc.Issue(ctx, validInput())
		require.NoError(t, err)

		clock.now = clock.now.Add(24*time.Hour + time.Second)

		_, err = uc.Authenticate(ctx, output.AccessToken)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Success_ValidJustBeforeExpiry", func(t *testing.T) {
		uc, clock, _ := setupTokenUseCase(t)
		output, err := uc.Issue(ctx, validInput())
		require.NoError(t, err)

		clock.now = clock.now.Add(24*time.Hour - time.Second)

		_, err = uc.Authenticate(ctx, output.AccessToken)
		assert.NoError(t, err)
	})

	t.Run("Error_EmptyToken", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		_, err := uc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_GarbageToken", func(t *testing.T) {
		uc, _, _ := setupTokenUseCase(t)
		_, err := uc.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_ForeignSubject", func(t *testing.T) {
		uc, clock, cfg := setupTokenUseCase(t)
		signer := authService.NewTokenService([]byte(cfg.JWTSecret), clock.Now)
		foreign, err := signer.Sign("other-client", clock.now, clock.now.Add(time.Hour))
		require.NoError(t, err)

		_, err = uc.Authenticate(ctx, foreign)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_StatelessAcrossInstances", func(t *testing.T) {
		uc1, clock, cfg := setupTokenUseCase(t)
		output, err := uc1.Issue(ctx, validInput())
		require.NoError(t, err)

		// a fresh instance with the same key accepts the token without shared state
		uc2 := NewTokenUseCase(
			cfg,
			authService.NewSecretService(),
			authService.NewTokenService([]byte(cfg.JWTSecret), clock.Now),
			clock.Now,
		)
		_, err = uc2.Authenticate(ctx, output.AccessToken)
		assert.NoError(t, err)
	})
}
