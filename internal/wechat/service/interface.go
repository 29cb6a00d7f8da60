// Package service implements the WeChat webhook primitives: the SHA-1 signature
// scheme, the safe-mode AES-CBC message crypter and the XML message codec.
//
// All types are stateless after construction and safe for concurrent use.
package service

import (
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// SignatureValidator authenticates webhook calls.
type SignatureValidator interface {
	// Verify reports whether signature equals sha1(sort(token, timestamp, nonce)).
	Verify(params wechatDomain.SignatureParams) bool

	// VerifyMessage reports whether MsgSignature equals
	// sha1(sort(token, timestamp, nonce, encrypted)).
	VerifyMessage(params wechatDomain.SignatureParams, encrypted string) bool
}

// MessageCrypter encrypts and decrypts safe-mode message bodies.
type MessageCrypter interface {
	// Decrypt returns the plaintext XML carried in a base64 Encrypt value.
	// Any failure is reported as ErrDecryptionFailed.
	Decrypt(encrypted string) ([]byte, error)

	// Encrypt wraps plaintext XML in the safe-mode envelope and returns the
	// base64 Encrypt value.
	Encrypt(plaintext []byte) (string, error)
}

// MessageCodec decodes webhook XML documents.
type MessageCodec interface {
	// DecodeMessage extracts an InboundMessage from a plaintext XML document.
	DecodeMessage(raw []byte) (*wechatDomain.InboundMessage, error)

	// DecodeEncryptedEnvelope returns the Encrypt leaf of a safe-mode document.
	DecodeEncryptedEnvelope(raw []byte) (string, error)
}
