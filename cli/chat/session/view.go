package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gemchat/cli/chat/styles"
	"gemchat/internal/chat"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	body := styles.ViewportStyle.Render(m.viewport.View())
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	if !m.online {
		b.WriteString(styles.OfflineBannerStyle.Width(m.width).Render("⚠ Offline — sending is disabled"))
		b.WriteString("\n")
	}

	inputStyle := styles.TextAreaStyle
	if m.sidebarFocused || m.renaming {
		inputStyle = styles.TextAreaBlurredStyle
	}
	b.WriteString(inputStyle.Render(m.textarea.View()))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return m.alert.Render(b.String())
}

func (m *Model) renderTitle() string {
	session, ok := m.store.CurrentSession()
	name := "no session"
	if ok {
		name = session.Name
	}

	status := styles.StatusOnlineStyle.Render(" ● online ")
	if !m.online {
		status = styles.StatusOfflineStyle.Render(" ○ offline ")
	}

	title := fmt.Sprintf(" 💬 %s │ 🤖 %s ", name, m.config.Chat.Model)
	return styles.TitleStyle.Width(m.width).Render(title + status)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	currentID := m.store.CurrentSessionID()

	for i, session := range m.store.Sessions() {
		if i > 0 {
			b.WriteString("\n")
		}

		name := styles.Truncate(session.Name, styles.TruncateLength)
		if m.renaming && i == m.sidebarIndex {
			name = m.renameInput.View()
		}

		marker := "  "
		if session.ID == currentID {
			marker = "● "
		}

		line := marker + name
		switch {
		case m.sidebarFocused && i == m.sidebarIndex:
			line = styles.SessionSelectedStyle.Render(line)
		case session.ID == currentID:
			line = styles.SessionActiveStyle.Render(line)
		default:
			line = styles.SessionStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(styles.SessionMetaStyle.Render(fmt.Sprintf("  %d messages · %s", len(session.Messages), relativeTime(session.LastActivity))))
		b.WriteString("\n")
	}

	if m.sidebarFocused {
		b.WriteString(styles.HelpStyle.Render("↑/↓ move · enter open\nn new · r rename\nd delete · c clear"))
	}

	style := styles.SidebarStyle
	if m.sidebarFocused {
		style = styles.SidebarFocusedStyle
	}
	return style.Width(styles.SidebarWidth).Height(m.viewport.Height).Render(b.String())
}

func (m *Model) renderThread() string {
	session, ok := m.store.CurrentSession()
	if !ok {
		return styles.TypingStyle.Render("No session. Press Tab, then n to create one.")
	}

	var b strings.Builder
	for i, msg := range session.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Sender {
		case chat.SenderUser:
			b.WriteString(styles.UserMessageStyle.Render(msg.Text))
			b.WriteString("\n")
			b.WriteString(renderStatus(msg))
		case chat.SenderBot:
			b.WriteString(styles.BotMessageStyle.Render(m.renderer.Render(msg.ID, msg.Text)))
		}
	}

	if m.store.Typing() {
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		b.WriteString(styles.TypingStyle.Render(" Gemini is typing..."))
	}

	return b.String()
}

func renderStatus(msg chat.Message) string {
	ts := msg.Timestamp.Format("15:04")
	switch msg.Status {
	case chat.StatusSending:
		return styles.StatusSendingStyle.Render(fmt.Sprintf("%s · sending…", ts))
	case chat.StatusFailed:
		return styles.StatusFailedStyle.Render(fmt.Sprintf("%s · ✗ failed — Alt+R to retry", ts))
	default:
		return styles.StatusSentStyle.Render(fmt.Sprintf("%s · ✓", ts))
	}
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
