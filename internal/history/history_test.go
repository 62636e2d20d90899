package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigation(t *testing.T) {
	h := NewAt(filepath.Join(t.TempDir(), "history"))
	h.Add("first")
	h.Add("second")

	entry, ok := h.Previous("draft in progress")
	require.True(t, ok)
	assert.Equal(t, "second", entry)

	entry, ok = h.Previous("")
	require.True(t, ok)
	assert.Equal(t, "first", entry)

	// Stepping past the oldest entry stays there.
	entry, ok = h.Previous("")
	assert.False(t, ok)
	assert.Equal(t, "first", entry)

	entry, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "second", entry)

	// Stepping past the newest entry restores the draft.
	entry, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "draft in progress", entry)

	_, ok = h.Next()
	assert.False(t, ok)
}

func TestAddSkipsBlanksAndDuplicates(t *testing.T) {
	h := NewAt(filepath.Join(t.TempDir(), "history"))
	h.Add("  ")
	h.Add("hello")
	h.Add("hello")

	entry, ok := h.Previous("")
	require.True(t, ok)
	assert.Equal(t, "hello", entry)
	_, ok = h.Previous("")
	assert.False(t, ok)
}

func TestPersistenceAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewAt(path)
	h.Add("multi\nline entry")
	h.Add("plain entry")

	reloaded := NewAt(path)
	entry, ok := reloaded.Previous("")
	require.True(t, ok)
	assert.Equal(t, "plain entry", entry)
	entry, ok = reloaded.Previous("")
	require.True(t, ok)
	assert.Equal(t, "multi\nline entry", entry)
}
