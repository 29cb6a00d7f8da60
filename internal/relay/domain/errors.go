package domain

import (
	"github.com/allisson/byoc-relay/internal/errors"
)

// Field resolution errors. Both wrap ErrInvalidInput and are always surfaced to
// CXone; the relay never falls back to an empty recipient or text.
var (
	// ErrUnresolvableIdentity indicates no candidate path yielded an external user id.
	ErrUnresolvableIdentity = errors.Wrap(errors.ErrInvalidInput, "unresolvable identity")

	// ErrUnresolvableText indicates no candidate path yielded message text.
	ErrUnresolvableText = errors.Wrap(errors.ErrInvalidInput, "unresolvable text")

	// ErrInvalidPayload indicates the post body is not a JSON object.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid payload")

	// ErrInvalidPostID indicates a blank or oversized post id path parameter.
	ErrInvalidPostID = errors.Wrap(errors.ErrInvalidInput, "invalid post id")
)
