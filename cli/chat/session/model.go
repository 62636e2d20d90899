package session

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"gemchat/cli/chat/styles"
	"gemchat/internal/chat"
	"gemchat/internal/configuration"
	"gemchat/internal/debug"
	"gemchat/internal/history"
	"gemchat/internal/markdown"
	"gemchat/internal/network"
)

const scrollResetDelay = 3 * time.Second

var log = debug.GetLogger()

// Model is the Bubble Tea model for the chat view: a session sidebar, the
// active thread, and the composer.
type Model struct {
	// Core dependencies
	ctx      context.Context
	config   *configuration.Config
	store    *chat.Store
	pipeline *chat.Pipeline

	// Connectivity
	monitor   *network.Monitor
	networkCh <-chan bool
	online    bool

	// UI components
	textarea    textarea.Model
	viewport    viewport.Model
	spinner     spinner.Model
	renderer    *markdown.Renderer
	renameInput textinput.Model
	alert       bubbleup.AlertModel

	// UI state
	width          int
	height         int
	ready          bool
	quitting       bool
	sidebarFocused bool
	sidebarIndex   int
	renaming       bool
	clipboardOK    bool
	err            error

	// Scroll debounce. Seq invalidates stale timers.
	scrollSeq int

	// Input history
	history           *history.History
	historyNavigating bool
}

// New creates the chat view model.
func New(
	ctx context.Context,
	config *configuration.Config,
	store *chat.Store,
	pipeline *chat.Pipeline,
	monitor *network.Monitor,
	clipboardOK bool,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Ctrl+J to send, Tab for sessions, Alt+P/N for history, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ri := textinput.New()
	ri.CharLimit = 64
	ri.Prompt = ""

	alert := bubbleup.NewAlertModel(40, true, 1)

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	return &Model{
		ctx:         ctx,
		config:      config,
		store:       store,
		pipeline:    pipeline,
		monitor:     monitor,
		networkCh:   monitor.Subscribe(),
		online:      monitor.Online(),
		textarea:    ta,
		spinner:     sp,
		renameInput: ri,
		alert:       *alert,
		renderer:    renderer,
		history:     history.New(),
		clipboardOK: clipboardOK,
	}, nil
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
		m.watchNetwork(),
	)
}

// selectedSession resolves the sidebar cursor to a session, in display
// (recency) order.
func (m *Model) selectedSession() (chat.Session, bool) {
	sessions := m.store.Sessions()
	if m.sidebarIndex < 0 || m.sidebarIndex >= len(sessions) {
		return chat.Session{}, false
	}
	return sessions[m.sidebarIndex], true
}

// clampSidebarIndex keeps the cursor within the session list after
// mutations.
func (m *Model) clampSidebarIndex() {
	n := m.store.Len()
	if m.sidebarIndex >= n {
		m.sidebarIndex = n - 1
	}
	if m.sidebarIndex < 0 {
		m.sidebarIndex = 0
	}
}
