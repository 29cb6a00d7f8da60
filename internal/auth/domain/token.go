package domain

import (
	"time"
)

// AccessToken is a self-contained bearer credential. Validation needs nothing
// beyond the signing key and the clock.
type AccessToken struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the token is no longer valid at now.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IssueTokenInput carries a token request as received from CXone.
type IssueTokenInput struct {
	GrantType    string
	ClientID     string
	ClientSecret string
}

// IssueTokenOutput is the issued token together with its lifetime.
type IssueTokenOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	ExpiresAt   time.Time
}
