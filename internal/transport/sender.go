// Package transport defines the outbound delivery capability shared by the
// CXone and WeChat senders, the recording implementation used in recording
// mode and tests, and the retrying HTTP client used by the network senders.
//
// Callers depend only on Sender. Which implementation backs it is decided once
// by the application container from TRANSPORT_MODE.
package transport

import (
	"context"
)

// Outcome describes a successful delivery.
type Outcome struct {
	// ProviderMessageID is the id assigned by the receiving platform, when it returns one.
	ProviderMessageID string
}

// Sender delivers a text message to a destination on one platform.
//
// A nil error means the platform accepted the message. Errors wrap
// errors.ErrTransport for delivery failures and errors.ErrInvalidInput for
// messages the sender refuses to attempt.
type Sender interface {
	Send(ctx context.Context, destination, text string) (Outcome, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, destination, text string) (Outcome, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, destination, text string) (Outcome, error) {
	return f(ctx, destination, text)
}
