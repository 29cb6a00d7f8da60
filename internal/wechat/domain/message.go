// Package domain defines the WeChat Official Account message model: inbound
// messages decoded from webhook XML, the query parameters used to authenticate
// a webhook call and the errors raised while doing so.
package domain

import (
	"time"
)

// Message kinds understood by the relay. Only text is forwarded.
const (
	MsgTypeText = "text"
)

// InboundMessage is a decoded WeChat text message.
//
// SenderID is the user's openid. It is forwarded unchanged as the CXone thread
// id and must never be rewritten.
type InboundMessage struct {
	SenderID    string
	RecipientID string
	CreatedAt   time.Time
	MsgType     string
	Content     string
	MsgID       string
}

// SignatureParams groups the values used to authenticate a single webhook call.
// Token is the shared secret from configuration; the others come from the query string.
type SignatureParams struct {
	Token        string
	Timestamp    string
	Nonce        string
	Signature    string
	MsgSignature string
}

// IsEncrypted reports whether the call carried a msg_signature, i.e. WeChat
// used safe mode for this delivery.
func (p SignatureParams) IsEncrypted() bool {
	return p.MsgSignature != ""
}
