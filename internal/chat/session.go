package chat

import (
	"time"

	"github.com/pkg/errors"
)

// Session is a named conversation thread with its own message history.
type Session struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

func (s *Session) validate() error {
	if s.ID == "" {
		return errors.New("session id is empty")
	}
	if s.Name == "" {
		return errors.New("session name is empty")
	}
	for i := range s.Messages {
		if err := s.Messages[i].validate(); err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
	}
	return nil
}

// snapshot returns a copy whose message slice is independent of the original.
func (s *Session) snapshot() Session {
	copied := *s
	copied.Messages = make([]Message, len(s.Messages))
	copy(copied.Messages, s.Messages)
	return copied
}

// messageIndex returns the position of the message with the given id, or -1.
func (s *Session) messageIndex(id string) int {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}
