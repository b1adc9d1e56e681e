package therapy

import (
	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/store"
)

// HistoryLimit bounds the per-session emotion window.
const HistoryLimit = 10

// Sender values used in the session message log.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Entry is one line of the session message log.
type Entry struct {
	Sender string
	Text   string
}

// session is the mutable state the engine keeps per session id.
type session struct {
	history []emotion.Label
	log     []Entry
}

func newSession() session {
	return session{history: make([]emotion.Label, 0, HistoryLimit+1)}
}

func (s *session) record(label emotion.Label) {
	s.history = append(s.history, label)
	if over := len(s.history) - HistoryLimit; over > 0 {
		copy(s.history, s.history[over:])
		s.history = s.history[:HistoryLimit]
	}
}

func (s *session) historyCopy() []emotion.Label {
	out := make([]emotion.Label, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryStore 保存每个会话最近的情绪序列。
type HistoryStore struct {
	sessions *store.Keyed[session]
}

// NewHistoryStore returns an empty process-lifetime store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{sessions: store.NewKeyed(newSession)}
}

// Record appends label, evicting the oldest entries beyond HistoryLimit.
func (h *HistoryStore) Record(sessionID string, label emotion.Label) {
	h.sessions.Update(sessionID, func(s *session) {
		s.record(label.Normalize())
	})
}

// History returns a copy of the current window; unknown sessions yield an empty slice.
func (h *HistoryStore) History(sessionID string) []emotion.Label {
	out := []emotion.Label{}
	h.sessions.View(sessionID, func(s *session) {
		out = s.historyCopy()
	})
	return out
}

// Log returns a copy of the session message log.
func (h *HistoryStore) Log(sessionID string) []Entry {
	var out []Entry
	h.sessions.View(sessionID, func(s *session) {
		out = append([]Entry(nil), s.log...)
	})
	return out
}

func (h *HistoryStore) update(sessionID string, fn func(*session)) {
	h.sessions.Update(sessionID, fn)
}
