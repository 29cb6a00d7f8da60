package domain

import (
	"github.com/allisson/byoc-relay/internal/errors"
)

// Authentication errors.
var (
	// ErrUnsupportedGrantType indicates the request used a grant type other than client_credentials.
	ErrUnsupportedGrantType = errors.Wrap(errors.ErrInvalidInput, "unsupported grant type")

	// ErrInvalidClient indicates the client id or secret did not match the configured client.
	ErrInvalidClient = errors.Wrap(errors.ErrUnauthorized, "invalid client credentials")

	// ErrInvalidToken indicates a bearer token that is malformed, expired, wrongly signed
	// or issued to another subject.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")
)
