// Package chat owns the session collection and the message delivery state
// machine. All state transitions go through Store and Pipeline operations;
// reads hand out snapshots.
package chat

import (
	"time"

	"github.com/pkg/errors"
)

// Sender identifies who authored a message.
type Sender string

// Senders.
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status is the delivery state of a message.
type Status string

// Statuses. User messages are created in sending and resolve to sent or
// failed; bot messages are created directly in sent.
const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is a single turn in a session.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
}

func (m *Message) validate() error {
	if m.ID == "" {
		return errors.New("message id is empty")
	}
	switch m.Sender {
	case SenderUser, SenderBot:
	default:
		return errors.Errorf("unknown sender %q", m.Sender)
	}
	switch m.Status {
	case StatusSending, StatusSent, StatusFailed:
	default:
		return errors.Errorf("unknown status %q", m.Status)
	}
	return nil
}
