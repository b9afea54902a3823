package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"retailiq/internal/routing"
)

var ErrNotFound = errors.New("session not found")

// Message is one entry in a session transcript.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Tool        routing.Tool `json:"tool,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	At          time.Time    `json:"at"`
}

// Session is one conversation: its memory plus the message transcript.
type Session struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Memory    *Memory    `json:"memory"`
	Messages  []Message  `json:"messages"`

	mu sync.Mutex
}

// Lock serializes turns within one session so concurrent questions on the
// same session cannot interleave their memory commits.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Append(msg Message) {
	msg.At = time.Now()
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.At
}

// Store holds all live sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: st.now(),
		UpdatedAt: st.now(),
		Memory:    NewMemory(),
	}
	st.sessions[s.ID] = s
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Reset clears a session's memory and transcript but keeps its ID valid.
func (st *Store) Reset(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Lock()
	s.Memory = NewMemory()
	s.Messages = nil
	s.UpdatedAt = st.now()
	s.Unlock()
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Prune drops sessions idle for longer than ttl and returns how many were
// removed.
func (st *Store) Prune(ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := st.now().Add(-ttl)
	n := 0
	for id, s := range st.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
