package domain

import (
	"github.com/allisson/byoc-relay/internal/errors"
)

// WeChat webhook error definitions.
//
// Signature failures wrap ErrUnauthorized and are always surfaced to WeChat.
// Everything else wraps ErrInvalidInput and is subject to the acknowledgement
// policy of the relay.
var (
	// ErrInvalidSignature indicates the signature query parameter does not match
	// sha1(sort(token, timestamp, nonce)).
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid signature")

	// ErrInvalidMessageSignature indicates the msg_signature query parameter does
	// not match the signature computed over the encrypted body.
	ErrInvalidMessageSignature = errors.Wrap(errors.ErrUnauthorized, "invalid message signature")

	// ErrDecryptionFailed indicates an authentic request whose encrypted body could
	// not be decrypted (bad base64, bad padding, wrong key or foreign appid).
	//
	// It is kept distinct from the signature errors so a forged request can be told
	// apart from a key misconfiguration.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMalformedPayload indicates the XML document is unparsable or lacks a required leaf.
	ErrMalformedPayload = errors.Wrap(errors.ErrInvalidInput, "malformed payload")

	// ErrUnsupportedMessageKind indicates a well-formed message whose MsgType is not text.
	ErrUnsupportedMessageKind = errors.Wrap(errors.ErrInvalidInput, "unsupported message kind")

	// ErrPayloadTooLarge indicates a webhook body above the configured size limit.
	ErrPayloadTooLarge = errors.Wrap(errors.ErrInvalidInput, "payload too large")

	// ErrInvalidEncodingAESKey indicates the configured EncodingAESKey does not decode to 32 bytes.
	ErrInvalidEncodingAESKey = errors.Wrap(errors.ErrConfiguration, "invalid encoding aes key")
)
