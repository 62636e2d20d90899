package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory persistence double.
type memKV struct {
	m map[string]string
}

func newMemKV() *memKV {
	return &memKV{m: map[string]string{}}
}

func (kv *memKV) Load(key string) (string, bool, error) {
	value, ok := kv.m[key]
	return value, ok, nil
}

func (kv *memKV) Save(key, value string) error {
	kv.m[key] = value
	return nil
}

func (kv *memKV) Remove(key string) error {
	delete(kv.m, key)
	return nil
}

func timestamp(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func marshal(t *testing.T, value any) string {
	t.Helper()
	serialized, err := json.Marshal(value)
	require.NoError(t, err)
	return string(serialized)
}

func TestFreshStartBootstrapsDefaultSession(t *testing.T) {
	store := NewStore(newMemKV())

	require.Equal(t, 1, store.Len())
	session, ok := store.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, "General Chat", session.Name)
	assert.Empty(t, session.Messages)
}

func TestCorruptStateBootstrapsDefaultSession(t *testing.T) {
	for name, serialized := range map[string]string{
		"not json":      `{{{`,
		"bad timestamp": `[{"id":"a","name":"A","messages":[],"createdAt":"yesterday","lastActivity":"yesterday"}]`,
		"bad status":    `[{"id":"a","name":"A","messages":[{"id":"m","text":"x","sender":"user","timestamp":"2026-01-02T15:04:05Z","status":"pending"}],"createdAt":"2026-01-02T15:04:05Z","lastActivity":"2026-01-02T15:04:05Z"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := newMemKV()
			require.NoError(t, kv.Save("chatSessions", serialized))

			store := NewStore(kv)
			require.Equal(t, 1, store.Len())
			session, ok := store.CurrentSession()
			require.True(t, ok)
			assert.Equal(t, "General Chat", session.Name)
		})
	}
}

func TestCreateSessionAutoName(t *testing.T) {
	store := NewStore(newMemKV())

	// Drop the bootstrap session so the store is empty.
	store.DeleteSession(store.CurrentSessionID())
	require.Equal(t, 0, store.Len())
	require.Empty(t, store.CurrentSessionID())

	id := store.CreateSession("", true)
	session, ok := store.Session(id)
	require.True(t, ok)
	assert.Equal(t, "Chat 1", session.Name)
	assert.Equal(t, id, store.CurrentSessionID())

	store.CreateSession("", false)
	sessions := store.Sessions()
	names := []string{sessions[0].Name, sessions[1].Name}
	assert.Contains(t, names, "Chat 2")
}

func TestSwitchSession(t *testing.T) {
	store := NewStore(newMemKV())
	first := store.CurrentSessionID()
	second := store.CreateSession("work", false)

	store.SetUserScrolledUp(true)
	store.SwitchSession(second)
	assert.Equal(t, second, store.CurrentSessionID())
	assert.False(t, store.UserScrolledUp(), "switching resets the scroll flag")

	// Unknown ids are ignored and must not corrupt the pointer.
	store.SwitchSession("nope")
	assert.Equal(t, second, store.CurrentSessionID())

	store.SwitchSession(first)
	assert.Equal(t, first, store.CurrentSessionID())
}

func TestRenameSession(t *testing.T) {
	store := NewStore(newMemKV())
	id := store.CurrentSessionID()

	store.RenameSession(id, "  project notes  ")
	session, _ := store.Session(id)
	assert.Equal(t, "project notes", session.Name)

	store.RenameSession(id, "   ")
	session, _ = store.Session(id)
	assert.Equal(t, "project notes", session.Name, "blank rename keeps the old name")

	store.RenameSession("nope", "x")
	assert.Equal(t, 1, store.Len())
}

func TestDeleteSessionPromotion(t *testing.T) {
	store := NewStore(newMemKV())
	a := store.CurrentSessionID()
	b := store.CreateSession("b", false)

	store.DeleteSession(a)
	assert.Equal(t, b, store.CurrentSessionID(), "deleting the active session promotes the first remaining")

	store.DeleteSession(b)
	assert.Empty(t, store.CurrentSessionID())
	assert.Equal(t, 0, store.Len(), "deleting the last session leaves an empty store")
}

func TestDeleteInactiveSessionKeepsPointer(t *testing.T) {
	store := NewStore(newMemKV())
	a := store.CurrentSessionID()
	b := store.CreateSession("b", false)

	store.DeleteSession(b)
	assert.Equal(t, a, store.CurrentSessionID())
}

func TestCurrentSessionNeverDangles(t *testing.T) {
	store := NewStore(newMemKV())

	// Arbitrary create/delete churn: the pointer must always resolve or
	// be empty.
	check := func() {
		id := store.CurrentSessionID()
		if id == "" {
			return
		}
		_, ok := store.Session(id)
		require.True(t, ok, "currentSessionId %q does not resolve", id)
	}

	ids := []string{store.CurrentSessionID()}
	for i := 0; i < 5; i++ {
		ids = append(ids, store.CreateSession("", i%2 == 0))
		check()
	}
	for _, id := range ids {
		store.DeleteSession(id)
		check()
	}
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.CurrentSessionID())
}

func TestClearSessionIdempotent(t *testing.T) {
	store := NewStore(newMemKV())
	id := store.CurrentSessionID()
	require.True(t, store.appendMessage(id, Message{ID: "m1", Text: "hi", Sender: SenderUser, Status: StatusSent}))

	store.ClearSession(id)
	session, _ := store.Session(id)
	assert.Empty(t, session.Messages)
	assert.Equal(t, "General Chat", session.Name)

	store.ClearSession(id)
	session, _ = store.Session(id)
	assert.Empty(t, session.Messages)
}

func TestSessionsSortedByRecency(t *testing.T) {
	store := NewStore(newMemKV())
	a := store.CurrentSessionID()
	b := store.CreateSession("b", false)
	c := store.CreateSession("c", false)

	store.TouchActivity(b)
	store.TouchActivity(a)

	sessions := store.Sessions()
	require.Len(t, sessions, 3)
	assert.Equal(t, a, sessions[0].ID)
	assert.Equal(t, b, sessions[1].ID)
	assert.Equal(t, c, sessions[2].ID)
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := newMemKV()
	store := NewStore(kv)
	a := store.CurrentSessionID()
	require.True(t, store.appendMessage(a, Message{ID: "m1", Text: "hello", Sender: SenderUser, Timestamp: timestamp(t, "2026-01-02T15:04:05Z"), Status: StatusSent}))
	require.True(t, store.appendMessage(a, Message{ID: "m2", Text: "hi!", Sender: SenderBot, Timestamp: timestamp(t, "2026-01-02T15:04:07Z"), Status: StatusSent}))
	b := store.CreateSession("work", false)
	store.RenameSession(b, "Work")

	reloaded := NewStore(kv)
	require.Equal(t, store.Len(), reloaded.Len())
	assert.Equal(t, a, reloaded.CurrentSessionID())

	// Timestamps carry monotonic readings in memory, so compare the
	// serialized forms.
	assert.JSONEq(t, marshal(t, store.Sessions()), marshal(t, reloaded.Sessions()))

	session, ok := reloaded.Session(a)
	require.True(t, ok)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "m1", session.Messages[0].ID)
	assert.Equal(t, SenderUser, session.Messages[0].Sender)
	assert.Equal(t, StatusSent, session.Messages[0].Status)
	assert.Equal(t, "hi!", session.Messages[1].Text)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	store := NewStore(newMemKV())
	id := store.CurrentSessionID()
	require.True(t, store.appendMessage(id, Message{ID: "m1", Text: "hi", Sender: SenderUser, Status: StatusSent}))

	session, _ := store.Session(id)
	session.Messages[0].Text = "mutated"
	session.Messages = append(session.Messages, Message{ID: "m2"})

	again, _ := store.Session(id)
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "hi", again.Messages[0].Text)
}
