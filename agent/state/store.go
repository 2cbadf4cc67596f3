package state

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// StoreOption customizes Store.
type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps one Memory per session for the lifetime of the process.
// Entries are created lazily and never removed; Clear empties them in place.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

type sessionEntry struct {
	// turn serializes whole request/response cycles of one session.
	turn sync.Mutex
	// mu guards mem.
	mu  sync.Mutex
	mem *Memory
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*sessionEntry, 16),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// LockSession blocks until the caller owns the session's turn lock and
// returns the matching unlock function. Different sessions never contend.
func (s *Store) LockSession(sessionID string) (func(), error) {
	e, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	e.turn.Lock()
	return e.turn.Unlock, nil
}

// GetOrCreate returns a snapshot of the session's memory.
func (s *Store) GetOrCreate(sessionID string) (Memory, error) {
	var out Memory
	err := s.read(sessionID, func(m *Memory) {
		out = m.Clone()
	})
	return out, err
}

func (s *Store) UpdateSlot(sessionID string, key string, val any) error {
	return s.mutate(sessionID, func(m *Memory, now time.Time) {
		m.SetSlot(key, val, now)
	})
}

func (s *Store) GetSlot(sessionID string, key string, def any) any {
	out := def
	_ = s.read(sessionID, func(m *Memory) {
		if v, ok := m.Slots.Get(key); ok {
			out = v
		}
	})
	return out
}

// MergeSlots applies every set slot value with last-write-wins semantics.
func (s *Store) MergeSlots(sessionID string, slots contractx.Slots) error {
	return s.mutate(sessionID, func(m *Memory, now time.Time) {
		m.MergeSlots(slots, now)
	})
}

func (s *Store) UpdateContext(sessionID string, key string, val any) error {
	return s.mutate(sessionID, func(m *Memory, now time.Time) {
		m.SetContext(key, val, now)
	})
}

func (s *Store) GetContext(sessionID string, key string, def any) any {
	out := def
	_ = s.read(sessionID, func(m *Memory) {
		if v, ok := m.Context[key]; ok {
			out = v
		}
	})
	return out
}

func (s *Store) AppendHistory(sessionID string, role contractx.Role, content string) error {
	return s.AppendEntry(sessionID, contractx.HistoryEntry{Role: role, Content: content})
}

// AppendEntry keeps a caller supplied timestamp; a zero one is stamped now.
func (s *Store) AppendEntry(sessionID string, entry contractx.HistoryEntry) error {
	return s.mutate(sessionID, func(m *Memory, now time.Time) {
		m.AppendHistory(entry, now)
	})
}

// SeedHistory appends entries as prior history on the session's first turn
// only. A cleared session is not seeded again.
func (s *Store) SeedHistory(sessionID string, entries []contractx.HistoryEntry) (bool, error) {
	var seeded bool
	err := s.mutate(sessionID, func(m *Memory, now time.Time) {
		seeded = m.Seed(entries, now)
	})
	return seeded, err
}

func (s *Store) Clear(sessionID string) error {
	err := s.mutate(sessionID, func(m *Memory, now time.Time) {
		m.Reset(now)
	})
	if err == nil {
		log.Info().Str("session_id", sessionID).Msg("session memory cleared")
	}
	return err
}

func (s *Store) Summarize(sessionID string) (contractx.MemorySummary, error) {
	var out contractx.MemorySummary
	err := s.read(sessionID, func(m *Memory) {
		out = m.Summary()
	})
	return out, err
}

func (s *Store) read(sessionID string, fn func(m *Memory)) error {
	e, err := s.entry(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.mem)
	return nil
}

func (s *Store) mutate(sessionID string, fn func(m *Memory, now time.Time)) error {
	e, err := s.entry(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.mem, s.now())
	return nil
}

func (s *Store) entry(sessionID string) (*sessionEntry, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, contractx.ErrInvalidSession
	}

	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok {
		return e, nil
	}
	e = &sessionEntry{mem: NewMemory(sessionID, s.now())}
	s.sessions[sessionID] = e
	return e, nil
}
