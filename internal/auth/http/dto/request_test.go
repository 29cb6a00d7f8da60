package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
)

func TestIssueTokenRequest_Validate(t *testing.T) {
	valid := func() IssueTokenRequest {
		return IssueTokenRequest{
			GrantType:    "client_credentials",
			ClientID:     "cxone",
			ClientSecret: "secret",
		}
	}

	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := valid()
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_AnyGrantTypeValue", func(t *testing.T) {
		req := valid()
		req.GrantType = "password"
		assert.NoError(t, req.Validate())
	})

	tests := []struct {
		name   string
		mutate func(r *IssueTokenRequest)
	}{
		{"Error_MissingGrantType", func(r *IssueTokenRequest) { r.GrantType = "" }},
		{"Error_MissingClientID", func(r *IssueTokenRequest) { r.ClientID = "" }},
		{"Error_BlankClientID", func(r *IssueTokenRequest) { r.ClientID = "   " }},
		{"Error_MissingClientSecret", func(r *IssueTokenRequest) { r.ClientSecret = "" }},
		{"Error_ClientIDTooLong", func(r *IssueTokenRequest) { r.ClientID = strings.Repeat("a", 129) }},
		{"Error_ClientSecretTooLong", func(r *IssueTokenRequest) { r.ClientSecret = strings.Repeat("a", 257) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestIssueTokenRequest_ToInput(t *testing.T) {
	req := IssueTokenRequest{GrantType: "client_credentials", ClientID: "id", ClientSecret: "secret"}

	assert.Equal(t, &authDomain.IssueTokenInput{
		GrantType:    "client_credentials",
		ClientID:     "id",
		ClientSecret: "secret",
	}, req.ToInput())
}

func TestMapIssueTokenOutputToResponse(t *testing.T) {
	response := MapIssueTokenOutputToResponse(&authDomain.IssueTokenOutput{
		AccessToken: "jwt",
		TokenType:   "Bearer",
		ExpiresIn:   86400,
	})

	assert.Equal(t, IssueTokenResponse{AccessToken: "jwt", TokenType: "Bearer", ExpiresIn: 86400}, response)
}
