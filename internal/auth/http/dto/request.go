// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	customValidation "github.com/allisson/byoc-relay/internal/validation"
)

// IssueTokenRequest contains the parameters of an OAuth client-credentials token request.
// Accepted both as JSON and as application/x-www-form-urlencoded.
type IssueTokenRequest struct {
	GrantType    string `json:"grant_type"    form:"grant_type"`
	ClientID     string `json:"client_id"     form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// Validate checks that every parameter is present and within size limits.
// The grant type value itself is checked by the use case.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 50),
		),
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 128),
		),
		validation.Field(&r.ClientSecret,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 256),
		),
	)
}

// ToInput maps the request to the use case input.
func (r *IssueTokenRequest) ToInput() *authDomain.IssueTokenInput {
	return &authDomain.IssueTokenInput{
		GrantType:    r.GrantType,
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
	}
}
