package session

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gemchat/cli/chat/types"
	"gemchat/internal/chat"
)

// sendMessage stages the composer content as a new user message and kicks
// off the delivery attempt.
func (m *Model) sendMessage() tea.Cmd {
	userInput := strings.TrimSpace(m.textarea.Value())
	if userInput == "" {
		return nil
	}

	receipt, ok := m.pipeline.Stage(userInput, "")
	if !ok {
		return nil
	}

	m.history.Add(userInput)
	m.historyNavigating = false
	m.textarea.Reset()
	m.adjustTextareaHeight()

	m.refreshThread()
	m.viewport.GotoBottom()
	return m.deliver(receipt)
}

// retryLastFailed re-sends the most recent failed message of the active
// session under its original id.
func (m *Model) retryLastFailed() tea.Cmd {
	session, ok := m.store.CurrentSession()
	if !ok {
		return nil
	}
	for i := len(session.Messages) - 1; i >= 0; i-- {
		msg := session.Messages[i]
		if msg.Sender != chat.SenderUser || msg.Status != chat.StatusFailed {
			continue
		}
		receipt, ok := m.pipeline.Stage(msg.Text, msg.ID)
		if !ok {
			return nil
		}
		m.refreshThread()
		return m.deliver(receipt)
	}
	return nil
}

// deliver runs the blocking delivery attempt off the update loop.
func (m *Model) deliver(receipt chat.Receipt) tea.Cmd {
	return func() tea.Msg {
		err := m.pipeline.AttemptDelivery(m.ctx)
		return types.DeliveryResultMsg{Receipt: receipt, Err: err}
	}
}

// composeReply waits out the typing delay and queries the completion client
// off the update loop.
func (m *Model) composeReply(receipt chat.Receipt) tea.Cmd {
	return func() tea.Msg {
		reply := m.pipeline.ComposeReply(m.ctx, receipt.Message.Text)
		return types.BotReplyMsg{SessionID: receipt.SessionID, Reply: reply}
	}
}

// watchNetwork blocks on the next connectivity transition. Reissued after
// every NetworkStatusMsg.
func (m *Model) watchNetwork() tea.Cmd {
	return func() tea.Msg {
		online, ok := <-m.networkCh
		if !ok {
			return nil
		}
		return types.NetworkStatusMsg{Online: online}
	}
}

// scheduleScrollReset restarts the debounce timer that snaps the thread back
// to auto-follow.
func (m *Model) scheduleScrollReset() tea.Cmd {
	m.scrollSeq++
	seq := m.scrollSeq
	return tea.Tick(scrollResetDelay, func(time.Time) tea.Msg {
		return types.ScrollResetMsg{Seq: seq}
	})
}
