// internal/domain/session/store.go
package session

import (
	"strings"
	"sync"
	"time"
)

const (
	// DefaultIdleTTL matches the lifetime of the session cookie.
	DefaultIdleTTL = 30 * 24 * time.Hour
	// DefaultMaxSessions bounds the store; the least recently seen state
	// is evicted to make room.
	DefaultMaxSessions = 100_000
)

type entry struct {
	state    *ViewState
	lastSeen time.Time
}

// Store keeps view state in memory, keyed by session id.
//
// Reads never create state: a session only takes memory once it changes
// something. Entries idle for longer than the TTL are dropped.
type Store struct {
	mu     sync.Mutex
	states map[string]*entry
	ttl    time.Duration
	max    int
	now    func() time.Time
}

func NewStore() *Store {
	return NewStoreWithLimits(DefaultIdleTTL, DefaultMaxSessions)
}

// NewStoreWithLimits builds a store with a custom idle TTL and capacity.
// Non-positive values fall back to the defaults.
func NewStoreWithLimits(ttl time.Duration, max int) *Store {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Store{
		states: map[string]*entry{},
		ttl:    ttl,
		max:    max,
		now:    time.Now,
	}
}

// Len reports how many sessions hold state.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Get returns a snapshot of the session. Unknown or expired sessions get
// the default state, which is not stored.
func (s *Store) Get(id string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.liveLocked(id); e != nil {
		e.lastSeen = s.now()
		return e.state.clone()
	}
	return newViewState(id).clone()
}

// SetTab switches the active tab.
func (s *Store) SetTab(id string, tab Tab) (ViewState, error) {
	if tab != TabAvailable && tab != TabOwned {
		return ViewState{}, ErrInvalidTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getLocked(id)
	st.ActiveTab = tab
	return st.clone(), nil
}

// SetWallet remembers the wallet the session looks at.
func (s *Store) SetWallet(id, wallet string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getLocked(id)
	st.Wallet = strings.TrimSpace(wallet)
	return st.clone()
}

// MarkImageError flags key as failed. There is no way to clear it.
func (s *Store) MarkImageError(id, key string) (ViewState, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return ViewState{}, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getLocked(id)
	st.ImageErrors[key] = true
	return st.clone(), nil
}

// Sweep drops every idle session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Store) liveLocked(id string) *entry {
	e, ok := s.states[id]
	if !ok {
		return nil
	}
	if s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.states, id)
		return nil
	}
	return e
}

func (s *Store) getLocked(id string) *ViewState {
	now := s.now()
	if e := s.liveLocked(id); e != nil {
		e.lastSeen = now
		return e.state
	}
	if len(s.states) >= s.max {
		if s.sweepLocked() == 0 {
			s.evictOldestLocked()
		}
	}
	e := &entry{state: newViewState(id), lastSeen: now}
	s.states[id] = e
	return e.state
}

func (s *Store) sweepLocked() int {
	now := s.now()
	n := 0
	for id, e := range s.states {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.states, id)
			n++
		}
	}
	return n
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.states {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.states, oldestID)
	}
}
