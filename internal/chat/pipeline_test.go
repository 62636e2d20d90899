package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemchat/internal/delivery"
)

// stubCompleter scripts the completion client.
type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (c *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.reply, c.err
}

// notConfiguredError mimics a missing-credential completion error.
type notConfiguredError struct{}

func (notConfiguredError) Error() string            { return "api key not set" }
func (notConfiguredError) ConfigurationError() bool { return true }

func newTestPipeline(t *testing.T, transport delivery.Port, completer Completer) (*Pipeline, *Store) {
	t.Helper()
	store := NewStore(newMemKV())
	pipeline := NewPipeline(store, transport, completer, func() bool { return true }).
		WithTypingDelay(func() time.Duration { return 0 })
	return pipeline, store
}

func TestSendMessageDeliversAndReplies(t *testing.T) {
	completer := &stubCompleter{reply: "hello back"}
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, completer)

	receipt, reply, ok := pipeline.SendMessage(context.Background(), "  hello  ", "")
	require.True(t, ok)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, "hello", receipt.Message.Text, "text is trimmed before staging")
	assert.Equal(t, 1, completer.calls)
	assert.False(t, store.Typing())

	session, _ := store.Session(receipt.SessionID)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, SenderUser, session.Messages[0].Sender)
	assert.Equal(t, StatusSent, session.Messages[0].Status)
	assert.Equal(t, SenderBot, session.Messages[1].Sender)
	assert.Equal(t, "hello back", session.Messages[1].Text)
	assert.Equal(t, StatusSent, session.Messages[1].Status)
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	completer := &stubCompleter{reply: "never"}
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, completer)

	_, _, ok := pipeline.SendMessage(context.Background(), "   ", "")
	assert.False(t, ok)
	assert.Equal(t, 0, completer.calls)

	session, _ := store.CurrentSession()
	assert.Empty(t, session.Messages)
}

func TestSendMessageRejectsWithoutActiveSession(t *testing.T) {
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, &stubCompleter{})
	store.DeleteSession(store.CurrentSessionID())

	_, _, ok := pipeline.SendMessage(context.Background(), "hello", "")
	assert.False(t, ok)
}

func TestFailedDeliveryMarksFailedWithoutReply(t *testing.T) {
	completer := &stubCompleter{reply: "never"}
	pipeline, store := newTestPipeline(t, delivery.Fixed{Err: delivery.ErrNetwork}, completer)

	receipt, reply, ok := pipeline.SendMessage(context.Background(), "hello", "")
	require.True(t, ok, "a failed delivery still stages the message")
	assert.Empty(t, reply)
	assert.Equal(t, 0, completer.calls, "no bot reply for a failed message")
	assert.False(t, store.Typing())

	session, _ := store.Session(receipt.SessionID)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, StatusFailed, session.Messages[0].Status)
}

func TestRetryReplacesInPlace(t *testing.T) {
	completer := &stubCompleter{reply: "welcome"}
	pipeline, store := newTestPipeline(t, delivery.Fixed{Err: delivery.ErrNetwork}, completer)
	sessionID := store.CurrentSessionID()
	require.True(t, store.appendMessage(sessionID, Message{ID: "earlier", Text: "first", Sender: SenderUser, Status: StatusSent}))

	receipt, _, ok := pipeline.SendMessage(context.Background(), "second", "")
	require.True(t, ok)
	failedID := receipt.Message.ID

	require.True(t, store.appendMessage(sessionID, Message{ID: "later", Text: "reply to first", Sender: SenderBot, Status: StatusSent}))

	// The retry succeeds: same id, same position between its neighbours.
	pipeline.transport = delivery.Fixed{}
	retried, reply, ok := pipeline.RetryMessage(context.Background(), receipt.Message)
	require.True(t, ok)
	assert.Equal(t, failedID, retried.Message.ID)
	assert.Equal(t, "welcome", reply)
	assert.Equal(t, 1, completer.calls)

	session, _ := store.Session(sessionID)
	require.Len(t, session.Messages, 4)
	assert.Equal(t, "earlier", session.Messages[0].ID)
	assert.Equal(t, failedID, session.Messages[1].ID)
	assert.Equal(t, StatusSent, session.Messages[1].Status)
	assert.Equal(t, "later", session.Messages[2].ID)
	assert.Equal(t, SenderBot, session.Messages[3].Sender)
}

func TestRetryOfMissingMessageIsNoOp(t *testing.T) {
	completer := &stubCompleter{reply: "never"}
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, completer)

	_, _, ok := pipeline.RetryMessage(context.Background(), Message{ID: "gone", Text: "hello"})
	assert.False(t, ok)
	assert.Equal(t, 0, completer.calls)

	session, _ := store.CurrentSession()
	assert.Empty(t, session.Messages)
}

func TestOfflineSendAlwaysDelivers(t *testing.T) {
	// A simulator whose roll always fails still delivers when offline.
	transport := delivery.NewSimulator(0, 0.1).WithRoll(func() float64 { return 0 })
	store := NewStore(newMemKV())
	pipeline := NewPipeline(store, transport, &stubCompleter{reply: "hi"}, func() bool { return false }).
		WithTypingDelay(func() time.Duration { return 0 })

	receipt, _, ok := pipeline.SendMessage(context.Background(), "hello", "")
	require.True(t, ok)

	session, _ := store.Session(receipt.SessionID)
	assert.Equal(t, StatusSent, session.Messages[0].Status)
}

func TestNoMessageRemainsSending(t *testing.T) {
	for name, transport := range map[string]delivery.Port{
		"delivered": delivery.Fixed{},
		"failed":    delivery.Fixed{Err: delivery.ErrNetwork},
	} {
		t.Run(name, func(t *testing.T) {
			pipeline, store := newTestPipeline(t, transport, &stubCompleter{reply: "hi"})
			receipt, _, ok := pipeline.SendMessage(context.Background(), "hello", "")
			require.True(t, ok)

			session, _ := store.Session(receipt.SessionID)
			for _, msg := range session.Messages {
				assert.NotEqual(t, StatusSending, msg.Status)
			}
		})
	}
}

func TestComposeReplyFallbacks(t *testing.T) {
	for name, tc := range map[string]struct {
		completer *stubCompleter
		expected  string
	}{
		"not configured": {&stubCompleter{err: notConfiguredError{}}, "Error: API key not configured"},
		"wrapped not configured": {
			&stubCompleter{err: errors.Wrap(notConfiguredError{}, "completing")},
			"Error: API key not configured",
		},
		"transport error": {&stubCompleter{err: errors.New("connection refused")}, "Sorry, there was an error contacting the Gemini API."},
		"empty reply":     {&stubCompleter{reply: "   "}, "Sorry, I couldn't generate a response."},
	} {
		t.Run(name, func(t *testing.T) {
			pipeline, _ := newTestPipeline(t, delivery.Fixed{}, tc.completer)
			assert.Equal(t, tc.expected, pipeline.ComposeReply(context.Background(), "hello"))
		})
	}
}

func TestReplyToDeletedSessionIsDiscarded(t *testing.T) {
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, &stubCompleter{reply: "hi"})

	receipt, ok := pipeline.Stage("hello", "")
	require.True(t, ok)
	require.True(t, pipeline.ResolveDelivery(receipt, pipeline.AttemptDelivery(context.Background())))

	pipeline.BeginReply()
	require.True(t, store.Typing())
	reply := pipeline.ComposeReply(context.Background(), receipt.Message.Text)

	// The session disappears while the reply is in flight.
	store.DeleteSession(receipt.SessionID)
	pipeline.CommitReply(receipt.SessionID, reply)

	assert.False(t, store.Typing(), "typing clears even when the reply is discarded")
	_, exists := store.Session(receipt.SessionID)
	assert.False(t, exists)
}

func TestDeliveryToDeletedSessionResolvesToNoOp(t *testing.T) {
	pipeline, store := newTestPipeline(t, delivery.Fixed{}, &stubCompleter{reply: "hi"})

	receipt, ok := pipeline.Stage("hello", "")
	require.True(t, ok)
	store.DeleteSession(receipt.SessionID)

	assert.False(t, pipeline.ResolveDelivery(receipt, nil), "no reply for a message whose session is gone")
}
