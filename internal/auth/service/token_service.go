package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

const tokenIssuer = "byoc-relay"

// tokenClaims is the JWT payload of an access token.
type tokenClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// tokenService implements TokenService with HS256-signed JWTs.
type tokenService struct {
	key []byte
	now func() time.Time
}

// Sign creates a new HS256 JWT for subject.
func (t *tokenService) Sign(subject string, issuedAt, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		ClientID: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm, issuer and expiry of tokenString.
func (t *tokenService) Parse(tokenString string) (*authDomain.AccessToken, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, fmt.Errorf("invalid token")
	}

	return &authDomain.AccessToken{
		Value:     tokenString,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// NewTokenService creates a TokenService signing with key. A nil now uses time.Now.
func NewTokenService(key []byte, now func() time.Time) TokenService {
	if now == nil {
		now = time.Now
	}
	return &tokenService{
		key: key,
		now: now,
	}
}
