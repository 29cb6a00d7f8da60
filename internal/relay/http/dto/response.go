package dto

import (
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
)

// PostMessageResponse is the acknowledgement returned to CXone.
type PostMessageResponse struct {
	IDOnExternalPlatform string `json:"idOnExternalPlatform"`
}

// MapPostOutputToResponse converts the use case output to the API response.
func MapPostOutputToResponse(output *relayDomain.PostOutput) PostMessageResponse {
	return PostMessageResponse{IDOnExternalPlatform: output.IDOnExternalPlatform}
}
