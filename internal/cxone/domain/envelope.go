// Package domain defines the CXone Digital (DFO) message envelope the relay
// posts for every inbound WeChat message.
package domain

import (
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// Envelope constants fixed by the BYOC contract.
const (
	MessageTypeText  = "text"
	DirectionInbound = "inbound"
)

// Thread identifies the conversation on the external platform.
type Thread struct {
	IDOnExternalPlatform string `json:"idOnExternalPlatform"`
}

// Message is the message body.
type Message struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// OutboundEnvelope is the JSON document sent to
// POST {base}/channels/{channelId}/messages.
type OutboundEnvelope struct {
	Thread    Thread  `json:"thread"`
	Message   Message `json:"message"`
	Direction string  `json:"direction"`
}

// NewInboundEnvelope builds the envelope for a text message from threadID.
// threadID is the WeChat openid, passed through unchanged.
func NewInboundEnvelope(threadID, text string) OutboundEnvelope {
	return OutboundEnvelope{
		Thread:    Thread{IDOnExternalPlatform: threadID},
		Message:   Message{Text: text, Type: MessageTypeText},
		Direction: DirectionInbound,
	}
}

// EnvelopeFromWeChat builds the envelope for a decoded WeChat message.
func EnvelopeFromWeChat(msg *wechatDomain.InboundMessage) OutboundEnvelope {
	return NewInboundEnvelope(msg.SenderID, msg.Content)
}
