package chat

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"gemchat/internal/debug"
	"gemchat/internal/delivery"
)

// Fallback reply texts. Completion failures never fail the pipeline; they
// degrade into one of these bot replies.
const (
	fallbackNotConfigured = "Error: API key not configured"
	fallbackTransport     = "Sorry, there was an error contacting the Gemini API."
	fallbackEmptyReply    = "Sorry, I couldn't generate a response."
)

// Completer produces a bot reply for a user prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// configurationError is implemented by completer errors that indicate a
// missing credential rather than a transport failure.
type configurationError interface {
	ConfigurationError() bool
}

// Receipt identifies a staged message and the session it was staged into.
type Receipt struct {
	SessionID string
	Message   Message
}

// Pipeline implements optimistic send, delivery resolution, retry, and bot
// reply orchestration over a Store. The phases are split so that every state
// mutation runs on the caller's single timeline: Stage, ResolveDelivery,
// BeginReply and CommitReply mutate; AttemptDelivery and ComposeReply only
// block.
type Pipeline struct {
	store     *Store
	transport delivery.Port
	completer Completer
	online    func() bool

	typingDelay func() time.Duration
	newID       func() string
	log         *slog.Logger
}

// NewPipeline wires a pipeline over the store and its capability ports.
// online reports the latest network status; it only biases the simulated
// delivery roll, it never gates a send.
func NewPipeline(store *Store, transport delivery.Port, completer Completer, online func() bool) *Pipeline {
	return &Pipeline{
		store:       store,
		transport:   transport,
		completer:   completer,
		online:      online,
		typingDelay: func() time.Duration { return time.Second + time.Duration(rand.Int63n(int64(2*time.Second))) },
		newID:       func() string { return uuid.New().String() },
		log:         debug.GetLogger(),
	}
}

// WithTypingDelay overrides the randomized typing delay. Used by tests and
// by configuration.
func (p *Pipeline) WithTypingDelay(delay func() time.Duration) *Pipeline {
	p.typingDelay = delay
	return p
}

// Stage validates and records an outbound user message in the active
// session: a retry replaces the original message in place under the same id,
// anything else is appended with a fresh id, in sending status either way.
// Returns false (staging nothing) for blank text, no active session, or a
// retry id that no longer exists.
func (p *Pipeline) Stage(text, retryID string) (Receipt, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Receipt{}, false
	}
	sessionID := p.store.CurrentSessionID()
	if sessionID == "" {
		return Receipt{}, false
	}

	msg := Message{
		ID:        retryID,
		Text:      text,
		Sender:    SenderUser,
		Timestamp: time.Now(),
		Status:    StatusSending,
	}
	if retryID != "" {
		if !p.store.replaceMessage(sessionID, msg) {
			return Receipt{}, false
		}
	} else {
		msg.ID = p.newID()
		if !p.store.appendMessage(sessionID, msg) {
			return Receipt{}, false
		}
	}
	return Receipt{SessionID: sessionID, Message: msg}, true
}

// AttemptDelivery runs the blocking delivery attempt for a staged message.
// It mutates nothing; feed its result to ResolveDelivery.
func (p *Pipeline) AttemptDelivery(ctx context.Context) error {
	return p.transport.Attempt(ctx, p.online())
}

// ResolveDelivery transitions the staged message to sent or failed and
// reports whether a bot reply should now be generated. A session or message
// that disappeared while the attempt was in flight resolves to a no-op.
func (p *Pipeline) ResolveDelivery(receipt Receipt, deliveryErr error) bool {
	if deliveryErr != nil {
		p.log.Info("delivery failed", "session", receipt.SessionID, "message", receipt.Message.ID, "error", deliveryErr)
		p.store.setMessageStatus(receipt.SessionID, receipt.Message.ID, StatusFailed)
		return false
	}
	return p.store.setMessageStatus(receipt.SessionID, receipt.Message.ID, StatusSent)
}

// BeginReply marks a bot reply as outstanding.
func (p *Pipeline) BeginReply() {
	p.store.SetTyping(true)
}

// ComposeReply waits out the typing delay and queries the completion client.
// Configuration errors, transport errors and empty payloads all degrade into
// fixed fallback texts; this never fails. It mutates nothing.
func (p *Pipeline) ComposeReply(ctx context.Context, userText string) string {
	select {
	case <-time.After(p.typingDelay()):
	case <-ctx.Done():
	}

	reply, err := p.completer.Complete(ctx, userText)
	if err != nil {
		var confErr configurationError
		if errors.As(err, &confErr) && confErr.ConfigurationError() {
			p.log.Warn("completion client not configured", "error", err)
			return fallbackNotConfigured
		}
		p.log.Warn("completion failed", "error", err)
		return fallbackTransport
	}
	if strings.TrimSpace(reply) == "" {
		return fallbackEmptyReply
	}
	return reply
}

// CommitReply appends the bot reply to its original session and clears the
// typing flag. If the session was deleted while the reply was in flight the
// reply is silently discarded.
func (p *Pipeline) CommitReply(sessionID, reply string) {
	defer p.store.SetTyping(false)

	msg := Message{
		ID:        p.newID(),
		Text:      reply,
		Sender:    SenderBot,
		Timestamp: time.Now(),
		Status:    StatusSent,
	}
	if !p.store.appendMessage(sessionID, msg) {
		p.log.Info("discarding reply for deleted session", "session", sessionID)
	}
}

// SendMessage runs the whole pipeline synchronously: stage, deliver, and on
// success compose and commit the bot reply. It returns the receipt, the bot
// reply ("" when the send failed or staged nothing), and whether a message
// was staged at all. Interactive views run the phases themselves so the UI
// stays responsive; this entry point serves line mode and tests.
func (p *Pipeline) SendMessage(ctx context.Context, text, retryID string) (Receipt, string, bool) {
	receipt, ok := p.Stage(text, retryID)
	if !ok {
		return Receipt{}, "", false
	}
	if !p.ResolveDelivery(receipt, p.AttemptDelivery(ctx)) {
		return receipt, "", true
	}
	p.BeginReply()
	reply := p.ComposeReply(ctx, receipt.Message.Text)
	p.CommitReply(receipt.SessionID, reply)
	return receipt, reply, true
}

// RetryMessage re-enters the send procedure with the message's original id.
func (p *Pipeline) RetryMessage(ctx context.Context, msg Message) (Receipt, string, bool) {
	return p.SendMessage(ctx, msg.Text, msg.ID)
}
