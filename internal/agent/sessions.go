package agent

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ashita-ai/fitcoach/internal/gemini"
)

// Session is one conversation context: an identifier plus the
// transcript that follow-up requests build on.
type Session struct {
	ID      string
	History []gemini.Content
}

// Sessions maps usernames to their workout-plan conversation. It is
// process-scoped, explicitly owned state injected into the Coach;
// entries live until replaced, there is no expiry.
//
// The mutex guards the map itself; it does not serialize whole
// generate calls. Concurrent refinements for the same username can
// interleave their transcript updates. Known limitation, accepted for
// the demo's request volume.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*Session
}

// NewSessions creates an empty session mapping.
func NewSessions() *Sessions {
	return &Sessions{entries: make(map[string]*Session)}
}

// Resolve returns the session to use for a request. Follow-up requests
// reuse the stored session so the agent keeps prior context; anything
// else allocates a fresh session, replacing a stale entry if present.
func (s *Sessions) Resolve(username string, isFollowUp bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isFollowUp {
		if existing, ok := s.entries[username]; ok {
			return existing
		}
	}
	session := &Session{ID: uuid.New().String()}
	s.entries[username] = session
	return session
}

// Get returns the stored session for a username, if any.
func (s *Sessions) Get(username string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.entries[username]
	return session, ok
}
