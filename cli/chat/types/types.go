// Package types holds the bubbletea messages exchanged between the session
// model and its async commands.
package types

import (
	"gemchat/internal/chat"
)

// DeliveryResultMsg reports the outcome of a delivery attempt for a staged
// user message.
type DeliveryResultMsg struct {
	Receipt chat.Receipt
	Err     error
}

// BotReplyMsg carries a composed bot reply back to its session.
type BotReplyMsg struct {
	SessionID string
	Reply     string
}

// NetworkStatusMsg reports a connectivity transition.
type NetworkStatusMsg struct {
	Online bool
}

// ScrollResetMsg fires when the scroll debounce timer elapses. Seq guards
// against stale timers: only the most recent one wins.
type ScrollResetMsg struct {
	Seq int
}
