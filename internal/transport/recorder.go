package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SentMessage is one entry of the Recorder log.
type SentMessage struct {
	Destination string
	Text        string
	SentAt      time.Time
	Outcome     Outcome
}

// Recorder is a Sender that appends every attempt to an in-memory ordered log
// and always succeeds. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	sent []SentMessage
}

// Send records the message and returns a sequential provider id.
func (r *Recorder) Send(ctx context.Context, destination, text string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := Outcome{ProviderMessageID: fmt.Sprintf("recorded-%d", len(r.sent)+1)}
	r.sent = append(r.sent, SentMessage{
		Destination: destination,
		Text:        text,
		SentAt:      time.Now().UTC(),
		Outcome:     outcome,
	})

	return outcome, nil
}

// Sent returns a snapshot of the log in send order.
func (r *Recorder) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]SentMessage, len(r.sent))
	copy(snapshot, r.sent)
	return snapshot
}

// Len returns the number of recorded messages.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}
