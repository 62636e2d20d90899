// Package history keeps a persistent input history for the composer, with
// shell-style previous/next navigation.
package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	historyFileName = "gemchat_input_history"
	maxEntries      = 500
)

// History records submitted composer inputs and replays them on demand.
// An index of -1 means the user is editing a fresh input.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
	draft   string // input in progress, stashed while navigating
	path    string
}

// New loads the history file from the OS temp directory.
func New() *History {
	return NewAt(filepath.Join(os.TempDir(), historyFileName))
}

// NewAt loads the history file at path, creating an empty history if the
// file is absent.
func NewAt(path string) *History {
	h := &History{index: -1, path: path}
	h.load()
	return h
}

func (h *History) load() {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		entry := unescape(scanner.Text())
		if entry != "" {
			h.entries = append(h.entries, entry)
		}
	}
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
}

// save persists the history. Failures are swallowed; losing input history is
// not worth surfacing an error mid-session.
func (h *History) save() {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Create(h.path)
	if err != nil {
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range h.entries {
		writer.WriteString(escape(entry) + "\n")
	}
	writer.Flush()
}

// Add records a submitted input and resets navigation. Blank inputs and
// immediate duplicates are ignored.
func (h *History) Add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}

	h.mu.Lock()
	h.index = -1
	h.draft = ""
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		h.mu.Unlock()
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
	h.mu.Unlock()

	h.save()
}

// Previous steps back in time. The current composer content is stashed on
// the first step so Next can restore it.
func (h *History) Previous(currentInput string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.index == -1:
		h.draft = currentInput
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next steps forward in time, restoring the stashed draft past the newest
// entry.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}
	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.draft, true
	}
	return h.entries[h.index], true
}

// Reset abandons navigation. Call it when the user edits the input.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.draft = ""
}

// Newlines are stored escaped so each entry stays on one line.
func escape(entry string) string {
	entry = strings.ReplaceAll(entry, "\\", "\\\\")
	return strings.ReplaceAll(entry, "\n", "\\n")
}

func unescape(line string) string {
	line = strings.ReplaceAll(line, "\\n", "\n")
	return strings.ReplaceAll(line, "\\\\", "\\")
}
