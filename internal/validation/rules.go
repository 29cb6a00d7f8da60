// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// MaxRunes validates that a string holds at most max characters.
// Length is counted in runes so multi-byte text (CJK, emoji) is measured the
// way the messaging platforms measure it.
func MaxRunes(max int) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return utf8.RuneCountInString(s) <= max
		},
		validation.NewError("validation_max_runes", "is too long").
			SetParams(map[string]any{"max": max}),
	)
}
