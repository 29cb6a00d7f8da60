package domain

// ResolvedMessage is the canonical outbound message. Code after the Field
// Resolver depends only on this, never on the raw payload shape.
type ResolvedMessage struct {
	// ExternalUserID is the WeChat openid, equal to the CXone thread id.
	ExternalUserID string
	Text           string
}

// PostInput is a CXone post-message call after bearer authentication.
type PostInput struct {
	PostID  string
	Payload *Payload
}

// PostOutput is the acknowledgement returned to CXone.
type PostOutput struct {
	IDOnExternalPlatform string
}
