// Package chat answers tenant questions from retrieved context
package chat

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	domainChat "github.com/tourassist/backend/internal/domain/chat"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

// DefaultMaxTurns is four user/assistant exchanges
const DefaultMaxTurns = 8

// session is a fixed-capacity ring of turns
type session struct {
	mu    sync.Mutex
	turns []domainChat.Turn
	start int
	size  int
}

func (s *session) append(t domainChat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	capacity := len(s.turns)
	if s.size < capacity {
		s.turns[(s.start+s.size)%capacity] = t
		s.size++
		return
	}
	s.turns[s.start] = t
	s.start = (s.start + 1) % capacity
}

func (s *session) history() []domainChat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domainChat.Turn, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.turns[(s.start+i)%len(s.turns)]
	}
	return out
}

// SessionMemory keeps the most recent turns of every session in memory
type SessionMemory struct {
	maxTurns int
	sessions *gocache.Cache
	// createMu makes get-or-create atomic
	createMu sync.Mutex
}

// NewSessionMemory creates a memory of maxTurns per session; ttl > 0 drops
// sessions idle for that long
func NewSessionMemory(maxTurns int, ttl time.Duration) *SessionMemory {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	expiration, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl/2
	}
	return &SessionMemory{
		maxTurns: maxTurns,
		sessions: gocache.New(expiration, cleanup),
	}
}

// ProvideSessionMemory wires the memory from configuration
func ProvideSessionMemory(cfg *config.ChatConfig) *SessionMemory {
	return NewSessionMemory(cfg.MaxTurns, cfg.SessionTTL)
}

// Append records a turn, evicting the oldest when the session is full.
// Sessions are scoped to their tenant; equal session ids of two tenants never
// share turns.
func (m *SessionMemory) Append(tenantID, sessionID, role, content string) {
	m.getOrCreate(sessionKey(tenantID, sessionID)).append(domainChat.Turn{Role: role, Content: content})
}

// History returns the session's turns oldest first; unknown sessions are empty
func (m *SessionMemory) History(tenantID, sessionID string) []domainChat.Turn {
	v, ok := m.sessions.Get(sessionKey(tenantID, sessionID))
	if !ok {
		return []domainChat.Turn{}
	}
	return v.(*session).history()
}

// Len returns the number of live sessions
func (m *SessionMemory) Len() int {
	return m.sessions.ItemCount()
}

func (m *SessionMemory) getOrCreate(key string) *session {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	if v, ok := m.sessions.Get(key); ok {
		s := v.(*session)
		// refresh the idle deadline
		m.sessions.SetDefault(key, s)
		return s
	}
	s := &session{turns: make([]domainChat.Turn, m.maxTurns)}
	m.sessions.SetDefault(key, s)
	return s
}

// sessionKey joins tenant and session with a byte neither can contain
func sessionKey(tenantID, sessionID string) string {
	return tenantID + "\x00" + sessionID
}
