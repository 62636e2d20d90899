package session

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"gemchat/cli/chat/styles"
)

// sidebarVisible reports whether the terminal is wide enough for the
// sidebar.
func (m *Model) sidebarVisible() bool {
	return m.width >= 2*styles.SidebarWidth
}

// refreshThread re-renders the active thread into the viewport, preserving
// auto-follow.
func (m *Model) refreshThread() {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderThread())
	if wasAtBottom && !m.store.UserScrolledUp() {
		m.viewport.GotoBottom()
	}
}

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	content := m.textarea.Value()
	lineCount := strings.Count(content, "\n") + 1

	newHeight := lineCount
	if newHeight < styles.MinTextareaHeight {
		newHeight = styles.MinTextareaHeight
	}
	if newHeight > styles.MaxTextareaHeight {
		newHeight = styles.MaxTextareaHeight
	}

	oldHeight := m.textarea.Height()
	if oldHeight != newHeight {
		m.textarea.SetHeight(newHeight)
		heightDiff := newHeight - oldHeight
		m.recalculateLayout()
		if heightDiff != 0 && m.ready {
			m.viewport.LineDown(heightDiff)
		}
	}
}

// recalculateLayout adjusts viewport and textarea dimensions based on
// current state.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	viewportHeight := m.height - styles.HeaderHeight
	viewportHeight -= m.textarea.Height() + styles.InputBorderHeight
	if !m.online {
		viewportHeight -= 1
	}
	if m.err != nil {
		viewportHeight -= 1
	}
	if viewportHeight < styles.MinViewportHeight {
		viewportHeight = styles.MinViewportHeight
	}

	viewportWidth := m.width
	if m.sidebarVisible() {
		viewportWidth -= styles.SidebarWidth + styles.SidebarStyle.GetHorizontalFrameSize()
	}

	m.renderer.SetWidth(viewportWidth - styles.MessageHorizontalFrameSize())
	m.renameInput.Width = styles.TruncateLength

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
		m.viewport.SetContent(m.renderThread())
		m.viewport.GotoBottom()
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
		m.viewport.SetContent(m.renderThread())
	}

	m.textarea.SetWidth(m.width - styles.TextAreaStyle.GetHorizontalPadding() - styles.TextAreaStyle.GetHorizontalBorderSize())
}
