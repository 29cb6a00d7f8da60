package service

import (
	"crypto/sha1" //nolint:gosec // mandated by the WeChat signature scheme
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"

	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// Sign computes the WeChat signature over parts: the parts are sorted
// lexicographically, concatenated and hashed with SHA-1. The result is lower-case hex.
func Sign(parts ...string) string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)

	sum := sha1.Sum([]byte(strings.Join(sorted, ""))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// signatureValidator is the SignatureValidator implementation.
type signatureValidator struct{}

// Verify checks the plain webhook signature.
func (s *signatureValidator) Verify(params wechatDomain.SignatureParams) bool {
	return equalDigest(Sign(params.Token, params.Timestamp, params.Nonce), params.Signature)
}

// VerifyMessage checks the safe-mode msg_signature over the encrypted body.
func (s *signatureValidator) VerifyMessage(params wechatDomain.SignatureParams, encrypted string) bool {
	return equalDigest(Sign(params.Token, params.Timestamp, params.Nonce, encrypted), params.MsgSignature)
}

// equalDigest compares in constant time. An empty presented value never matches.
func equalDigest(expected, presented string) bool {
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(presented))) == 1
}

// NewSignatureValidator creates a new SignatureValidator.
func NewSignatureValidator() SignatureValidator {
	return &signatureValidator{}
}
