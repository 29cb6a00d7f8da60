// Package dto provides data transfer objects for the relay HTTP endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/byoc-relay/internal/validation"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// WebhookQuery holds the query parameters WeChat attaches to webhook calls.
// msg_signature is read from the query string only.
type WebhookQuery struct {
	Signature    string `form:"signature"`
	Timestamp    string `form:"timestamp"`
	Nonce        string `form:"nonce"`
	Echostr      string `form:"echostr"`
	MsgSignature string `form:"msg_signature"`
	EncryptType  string `form:"encrypt_type"`
}

// ValidateVerify checks the parameters of the GET handshake.
func (q *WebhookQuery) ValidateVerify() error {
	err := validation.ValidateStruct(q,
		validation.Field(&q.Signature, validation.Required, validation.Length(1, 128)),
		validation.Field(&q.Timestamp, validation.Required, validation.Length(1, 20)),
		validation.Field(&q.Nonce, validation.Required, validation.Length(1, 128)),
		validation.Field(&q.Echostr, validation.Required, validation.Length(1, 128)),
	)
	return customValidation.WrapValidationError(err)
}

// ValidateInbound checks the parameters of a message delivery.
func (q *WebhookQuery) ValidateInbound() error {
	err := validation.ValidateStruct(q,
		validation.Field(&q.Signature, validation.Required, validation.Length(1, 128)),
		validation.Field(&q.Timestamp, validation.Required, validation.Length(1, 20)),
		validation.Field(&q.Nonce, validation.Required, validation.Length(1, 128)),
		validation.Field(&q.MsgSignature, validation.Length(0, 128)),
		validation.Field(&q.EncryptType, validation.In("raw", "aes")),
	)
	return customValidation.WrapValidationError(err)
}

// ToSignatureParams maps the query to signature parameters. The token is
// filled in by the use case from configuration.
func (q *WebhookQuery) ToSignatureParams() wechatDomain.SignatureParams {
	return wechatDomain.SignatureParams{
		Timestamp:    q.Timestamp,
		Nonce:        q.Nonce,
		Signature:    q.Signature,
		MsgSignature: q.MsgSignature,
	}
}

// PostMessageRequest carries the path parameter and raw body of a CXone post.
type PostMessageRequest struct {
	PostID string
	Body   []byte
}

// Validate checks the post id. The body shape is left to the Field Resolver.
func (r *PostMessageRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.PostID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.MaxRunes(128),
		),
	)
	return customValidation.WrapValidationError(err)
}
