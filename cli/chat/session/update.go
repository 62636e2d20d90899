package session

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"gemchat/cli/chat/types"
	"gemchat/internal/chat"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message.
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		default:
			log.Info("update completed", "msg_type", fmt.Sprintf("%T", msg))
		}
	}()

	switch msg := msg.(type) {
	case types.NetworkStatusMsg:
		m.online = msg.Online
		cmds = append(cmds, m.watchNetwork())
		if !m.online {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.WarnKey, "You are offline"))
		}
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case types.DeliveryResultMsg:
		shouldReply := m.pipeline.ResolveDelivery(msg.Receipt, msg.Err)
		m.refreshThread()
		if msg.Err != nil {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.ErrorKey, "Message failed to send. Alt+R to retry."))
			return m, tea.Batch(cmds...)
		}
		if shouldReply {
			m.pipeline.BeginReply()
			m.refreshThread()
			cmds = append(cmds, m.composeReply(msg.Receipt))
		}
		return m, tea.Batch(cmds...)

	case types.BotReplyMsg:
		m.pipeline.CommitReply(msg.SessionID, msg.Reply)
		m.refreshThread()
		if msg.SessionID == m.store.CurrentSessionID() && !m.store.UserScrolledUp() {
			m.viewport.GotoBottom()
		}
		return m, tea.Batch(cmds...)

	case types.ScrollResetMsg:
		if msg.Seq == m.scrollSeq && m.store.UserScrolledUp() {
			m.store.SetUserScrolledUp(false)
			m.viewport.GotoBottom()
		}
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg, cmds)
		}
		if m.sidebarFocused {
			return m.updateSidebar(msg, cmds)
		}
		if model, cmd, handled := m.updateComposerKeys(msg, cmds); handled {
			return model, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.sidebarFocused && !m.renaming {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	// Leaving the bottom suspends auto-follow; the debounce timer snaps it
	// back a few seconds after the last scroll input.
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		if !m.viewport.AtBottom() {
			m.store.SetUserScrolledUp(true)
			cmds = append(cmds, m.scheduleScrollReset())
		} else {
			m.store.SetUserScrolledUp(false)
		}
	}

	return m, tea.Batch(cmds...)
}

// updateComposerKeys handles key bindings while the composer is focused.
// Reports whether the key was consumed.
func (m *Model) updateComposerKeys(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "alt+p":
		if entry, ok := m.history.Previous(m.textarea.Value()); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return m, tea.Batch(cmds...), true

	case "alt+n":
		if entry, ok := m.history.Next(); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return m, tea.Batch(cmds...), true

	case "alt+r":
		if cmd := m.retryLastFailed(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...), true

	case "alt+w":
		if m.copyLastBotMessage() {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
		}
		return m, tea.Batch(cmds...), true
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit, true

	case tea.KeyTab:
		m.sidebarFocused = true
		m.sidebarIndex = m.currentDisplayIndex()
		m.textarea.Blur()
		return m, tea.Batch(cmds...), true

	case tea.KeyCtrlJ:
		if !m.online {
			cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.WarnKey, "Cannot send while offline"))
			return m, tea.Batch(cmds...), true
		}
		if cmd := m.sendMessage(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...), true

	case tea.KeyEnter:
		if m.historyNavigating {
			m.history.Reset()
			m.historyNavigating = false
		}

	case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
		if m.historyNavigating {
			m.history.Reset()
			m.historyNavigating = false
		}
	}
	return m, nil, false
}

// updateSidebar handles key bindings while the sidebar is focused.
func (m *Model) updateSidebar(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "esc":
		m.sidebarFocused = false
		m.textarea.Focus()
		cmds = append(cmds, textarea.Blink)

	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}

	case "down", "j":
		if m.sidebarIndex < m.store.Len()-1 {
			m.sidebarIndex++
		}

	case "enter":
		if session, ok := m.selectedSession(); ok {
			m.store.SwitchSession(session.ID)
			m.refreshThread()
			m.viewport.GotoBottom()
			m.sidebarFocused = false
			m.textarea.Focus()
			cmds = append(cmds, textarea.Blink)
		}

	case "n":
		m.store.CreateSession("", true)
		m.sidebarIndex = m.currentDisplayIndex()
		m.refreshThread()

	case "d":
		if session, ok := m.selectedSession(); ok {
			m.store.DeleteSession(session.ID)
			m.clampSidebarIndex()
			m.refreshThread()
		}

	case "r":
		if session, ok := m.selectedSession(); ok {
			m.renaming = true
			m.renameInput.SetValue(session.Name)
			m.renameInput.CursorEnd()
			m.renameInput.Focus()
		}

	case "c":
		if session, ok := m.selectedSession(); ok {
			m.store.ClearSession(session.ID)
			m.refreshThread()
		}
	}
	return m, tea.Batch(cmds...)
}

// updateRename handles the inline rename editor.
func (m *Model) updateRename(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if session, ok := m.selectedSession(); ok {
			m.store.RenameSession(session.ID, m.renameInput.Value())
		}
		m.renaming = false
		m.renameInput.Blur()
		return m, tea.Batch(cmds...)

	case tea.KeyEsc:
		m.renaming = false
		m.renameInput.Blur()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// copyLastBotMessage writes the most recent bot reply of the active session
// to the system clipboard.
func (m *Model) copyLastBotMessage() bool {
	if !m.clipboardOK {
		return false
	}
	session, ok := m.store.CurrentSession()
	if !ok {
		return false
	}
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if session.Messages[i].Sender == chat.SenderBot {
			clipboard.Write(clipboard.FmtText, []byte(session.Messages[i].Text))
			return true
		}
	}
	return false
}

// currentDisplayIndex locates the active session in display (recency)
// order.
func (m *Model) currentDisplayIndex() int {
	currentID := m.store.CurrentSessionID()
	for i, session := range m.store.Sessions() {
		if session.ID == currentID {
			return i
		}
	}
	return 0
}
