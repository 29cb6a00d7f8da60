// Package domain defines the BYOC OAuth client-credentials model: the single
// configured client, the access tokens it is issued and the errors raised while
// issuing or validating them.
package domain

const (
	// GrantTypeClientCredentials is the only grant type the token endpoint accepts.
	GrantTypeClientCredentials = "client_credentials"

	// TokenTypeBearer is the token_type reported to callers.
	TokenTypeBearer = "Bearer"
)
