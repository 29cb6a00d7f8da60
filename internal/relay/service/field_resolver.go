// Package service implements the Field Resolver, which recovers the external
// user id and message text from CXone payloads whose shape is not fixed.
package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
)

// Limits on resolved values.
const (
	MaxExternalUserIDLength = 128
	MaxTextLength           = 10000
)

// ResolverPaths holds the ordered candidate key paths for each resolved field.
// Earlier paths win.
type ResolverPaths struct {
	Identity []string
	Text     []string
}

// DefaultResolverPaths is the candidate order used unless configuration overrides it.
var DefaultResolverPaths = ResolverPaths{
	Identity: []string{
		"thread.idOnExternalPlatform",
		"recipient.idOnExternalPlatform",
		"externalId",
		"metadata.openid",
		"openid",
	},
	Text: []string{
		"message.text",
		"message.content",
		"text",
		"content",
	},
}

// FieldResolver extracts a ResolvedMessage from a CXone payload.
type FieldResolver interface {
	Resolve(payload *relayDomain.Payload) (*relayDomain.ResolvedMessage, error)
}

type fieldResolver struct {
	paths ResolverPaths
}

// Resolve picks, independently per field, the first candidate path holding a
// non-blank value. It never substitutes an empty value.
func (f *fieldResolver) Resolve(payload *relayDomain.Payload) (*relayDomain.ResolvedMessage, error) {
	externalUserID, ok := firstPresent(payload, f.paths.Identity)
	if !ok {
		return nil, relayDomain.ErrUnresolvableIdentity
	}
	text, ok := firstPresent(payload, f.paths.Text)
	if !ok {
		return nil, relayDomain.ErrUnresolvableText
	}

	externalUserID = strings.TrimSpace(externalUserID)
	if utf8.RuneCountInString(externalUserID) > MaxExternalUserIDLength {
		return nil, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("external user id exceeds %d characters", MaxExternalUserIDLength),
		)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("message text exceeds %d characters", MaxTextLength),
		)
	}

	return &relayDomain.ResolvedMessage{
		ExternalUserID: externalUserID,
		Text:           text,
	}, nil
}

func firstPresent(payload *relayDomain.Payload, paths []string) (string, bool) {
	for _, path := range paths {
		value, ok := payload.Lookup(path)
		if ok && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}

// NewFieldResolver creates a FieldResolver. Empty path lists fall back to
// DefaultResolverPaths for that field.
func NewFieldResolver(paths ResolverPaths) FieldResolver {
	if len(paths.Identity) == 0 {
		paths.Identity = DefaultResolverPaths.Identity
	}
	if len(paths.Text) == 0 {
		paths.Text = DefaultResolverPaths.Text
	}
	return &fieldResolver{paths: paths}
}
