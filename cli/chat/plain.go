package chat

import (
	"context"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"gemchat/internal/chat"
	"gemchat/internal/cli"
	"gemchat/internal/configuration"
	"gemchat/internal/network"
)

// runPlain drives the pipeline synchronously from a readline loop, for
// terminals that cannot host the full view.
func runPlain(ctx context.Context, config *configuration.Config, store *chat.Store, pipeline *chat.Pipeline, monitor *network.Monitor) error {
	session, ok := store.CurrentSession()
	if !ok {
		id := store.CreateSession("", true)
		session, _ = store.Session(id)
	}

	cli.Title("gemchat — %s", session.Name)
	for _, msg := range session.Messages {
		printMessage(msg)
	}
	cli.Separator()
	cli.StatusInfo("Ctrl+J to send, Ctrl+D to quit. Failed messages retry with /retry.\n")

	for {
		if !monitor.Online() {
			cli.ErrorInfo("⚠ offline — sending is disabled; press enter to re-check\n")
		}

		input, err := cli.PromptUser()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/retry" {
			retryFailed(ctx, store, pipeline)
			continue
		}

		if !monitor.Online() {
			cli.ErrorInfo("cannot send while offline\n")
			continue
		}

		_, reply, ok := pipeline.SendMessage(ctx, input, "")
		if !ok {
			continue
		}
		if reply == "" {
			cli.ErrorInfo("✗ message failed to send — type /retry to try again\n")
			continue
		}
		cli.BotMessage("%s\n", reply)
		cli.Separator()
	}
}

// retryFailed re-sends the most recent failed message of the active
// session.
func retryFailed(ctx context.Context, store *chat.Store, pipeline *chat.Pipeline) {
	session, ok := store.CurrentSession()
	if !ok {
		return
	}
	for i := len(session.Messages) - 1; i >= 0; i-- {
		msg := session.Messages[i]
		if msg.Sender != chat.SenderUser || msg.Status != chat.StatusFailed {
			continue
		}
		_, reply, ok := pipeline.RetryMessage(ctx, msg)
		if !ok || reply == "" {
			cli.ErrorInfo("✗ message failed to send again\n")
			return
		}
		cli.BotMessage("%s\n", reply)
		cli.Separator()
		return
	}
	cli.StatusInfo("nothing to retry\n")
}

func printMessage(msg chat.Message) {
	switch msg.Sender {
	case chat.SenderUser:
		status := "✓"
		if msg.Status == chat.StatusFailed {
			status = "✗"
		}
		cli.UserMessage("[%s %s] %s\n", msg.Timestamp.Format("15:04"), status, msg.Text)
	case chat.SenderBot:
		cli.BotMessage("%s\n", msg.Text)
	}
}
