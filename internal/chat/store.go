package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gemchat/internal/debug"
	"gemchat/internal/kvstore"
)

// Persisted keys. Instants serialize as RFC 3339 strings.
const (
	keySessions       = "chatSessions"
	keyCurrentSession = "currentSessionId"
)

const defaultSessionName = "General Chat"

// Store owns the session collection and the active-session pointer. Every
// mutating operation persists the full collection; changes to the pointer
// persist its key separately. Reads return snapshots.
type Store struct {
	mu sync.Mutex
	kv kvstore.KV

	// sessions keeps insertion (creation) order. Display order is a
	// read-time recency sort, never stored.
	sessions  []*Session
	currentID string

	typing         bool
	userScrolledUp bool

	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

// NewStore loads persisted state from kv. Absent or malformed state is
// discarded wholesale and a default session is bootstrapped in its place.
func NewStore(kv kvstore.KV) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: func() string { return uuid.New().String()[:8] },
		log:   debug.GetLogger(),
	}
	if err := s.load(); err != nil {
		s.log.Warn("discarding persisted state", "error", err)
		s.sessions = nil
		s.currentID = ""
	}
	if len(s.sessions) == 0 {
		s.CreateSession(defaultSessionName, true)
	}
	return s
}

func (s *Store) load() error {
	serialized, ok, err := s.kv.Load(keySessions)
	if err != nil {
		return errors.Wrap(err, "loading sessions")
	}
	if !ok {
		return nil
	}

	var sessions []*Session
	if err := json.Unmarshal([]byte(serialized), &sessions); err != nil {
		return errors.Wrap(err, "unmarshaling sessions")
	}
	for i, session := range sessions {
		if err := session.validate(); err != nil {
			return errors.Wrapf(err, "session %d", i)
		}
	}
	s.sessions = sessions

	currentID, ok, err := s.kv.Load(keyCurrentSession)
	if err != nil {
		return errors.Wrap(err, "loading current session id")
	}
	// The saved pointer only wins if it still resolves; otherwise fall
	// back to the first session.
	if ok && s.indexOf(currentID) >= 0 {
		s.currentID = currentID
	} else if len(s.sessions) > 0 {
		s.currentID = s.sessions[0].ID
	}
	return nil
}

// CreateSession builds a new session and returns its id. A blank name
// defaults to "Chat {n+1}". If makeActive, the new session becomes current.
func (s *Store) CreateSession(name string, makeActive bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("Chat %d", len(s.sessions)+1)
	}
	now := s.now()
	session := &Session{
		ID:           s.newID(),
		Name:         name,
		Messages:     []Message{},
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions = append(s.sessions, session)
	s.persist()
	if makeActive {
		s.setCurrent(session.ID)
	}
	return session.ID
}

// SwitchSession makes the given session current and resets the scroll flag.
// Unknown ids are silently ignored.
func (s *Store) SwitchSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return
	}
	s.setCurrent(id)
	s.userScrolledUp = false
}

// RenameSession sets the session name to the trimmed new name. A name that
// trims to empty leaves the existing name unchanged.
func (s *Store) RenameSession(id, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return
	}
	s.sessions[i].Name = newName
	s.persist()
}

// DeleteSession removes the session. If it was current, the first remaining
// session in creation order is promoted, or no session if none remain.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	s.persist()
	if s.currentID == id {
		if len(s.sessions) > 0 {
			s.setCurrent(s.sessions[0].ID)
		} else {
			s.setCurrent("")
		}
	}
}

// TouchActivity marks the session as active now.
func (s *Store) TouchActivity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions[i].LastActivity = s.now()
	s.persist()
}

// ClearSession replaces the session's message list with an empty one. Name
// and timestamps are untouched.
func (s *Store) ClearSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions[i].Messages = []Message{}
	s.persist()
}

// Session returns a snapshot of the session with the given id.
func (s *Store) Session(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].snapshot(), true
}

// CurrentSessionID returns the active session id, or "" when none is active.
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// CurrentSession returns a snapshot of the active session.
func (s *Store) CurrentSession() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.currentID)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].snapshot(), true
}

// Sessions returns snapshots sorted by last activity, most recent first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.snapshot())
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetTyping records whether a bot reply is outstanding.
func (s *Store) SetTyping(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = v
}

// Typing reports whether a bot reply is outstanding.
func (s *Store) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// SetUserScrolledUp records the transient scroll heuristic.
func (s *Store) SetUserScrolledUp(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userScrolledUp = v
}

// UserScrolledUp reports the transient scroll heuristic.
func (s *Store) UserScrolledUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userScrolledUp
}

// appendMessage appends to the session and refreshes its activity. Reports
// whether the session existed.
func (s *Store) appendMessage(sessionID string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		return false
	}
	s.sessions[i].Messages = append(s.sessions[i].Messages, msg)
	s.sessions[i].LastActivity = s.now()
	s.persist()
	return true
}

// replaceMessage swaps the message carrying msg.ID in place, preserving its
// position. Reports whether the message was found.
func (s *Store) replaceMessage(sessionID string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		return false
	}
	j := s.sessions[i].messageIndex(msg.ID)
	if j < 0 {
		return false
	}
	s.sessions[i].Messages[j] = msg
	s.sessions[i].LastActivity = s.now()
	s.persist()
	return true
}

// setMessageStatus transitions a message's delivery status. Reports whether
// the message was found.
func (s *Store) setMessageStatus(sessionID, messageID string, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		return false
	}
	j := s.sessions[i].messageIndex(messageID)
	if j < 0 {
		return false
	}
	s.sessions[i].Messages[j].Status = status
	s.persist()
	return true
}

// indexOf returns the creation-order index of the session, or -1.
// Callers hold the lock.
func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, session := range s.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

// setCurrent updates the active pointer and persists it. Callers hold the
// lock.
func (s *Store) setCurrent(id string) {
	s.currentID = id
	if id == "" {
		if err := s.kv.Remove(keyCurrentSession); err != nil {
			s.log.Warn("removing current session id", "error", err)
		}
		return
	}
	if err := s.kv.Save(keyCurrentSession, id); err != nil {
		s.log.Warn("saving current session id", "error", err)
	}
}

// persist writes the whole collection. A failed save is logged and the
// in-memory state stays authoritative; nothing in this client is fatal.
// Callers hold the lock.
func (s *Store) persist() {
	serialized, err := json.Marshal(s.sessions)
	if err != nil {
		s.log.Warn("marshaling sessions", "error", err)
		return
	}
	if err := s.kv.Save(keySessions, string(serialized)); err != nil {
		s.log.Warn("saving sessions", "error", err)
	}
}
