package dto

import (
	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

// IssueTokenResponse is the OAuth token response body.
type IssueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// MapIssueTokenOutputToResponse converts the use case output to the API response.
func MapIssueTokenOutputToResponse(output *authDomain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   output.ExpiresIn,
	}
}
