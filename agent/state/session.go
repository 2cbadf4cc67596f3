package state

import (
	"time"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

const (
	// MaxHistory bounds Memory.History; the oldest entries are evicted first.
	MaxHistory = 50

	ContextLastOutlets = "last_outlets"
)

// Memory is the conversational state owned by one session.
// - Slots: last-write-wins values of well-known slots
// - Context: free-form bag (e.g. last_outlets -> []contract.Outlet)
// - History: at most MaxHistory entries, oldest first
// - Seeded: the first turn has happened; Reset keeps it set
type Memory struct {
	SessionID   string                   `json:"session_id"`
	Slots       contractx.Slots          `json:"slots"`
	Context     map[string]any           `json:"context"`
	History     []contractx.HistoryEntry `json:"history"`
	LastUpdated time.Time                `json:"last_updated"`
	Seeded      bool                     `json:"seeded"`
}

func NewMemory(sessionID string, now time.Time) *Memory {
	return &Memory{
		SessionID:   sessionID,
		Context:     make(map[string]any, 4),
		History:     make([]contractx.HistoryEntry, 0, 8),
		LastUpdated: now.UTC(),
	}
}

func (m *Memory) Touch(now time.Time) {
	m.LastUpdated = now.UTC()
}

func (m *Memory) SetSlot(key string, val any, now time.Time) {
	m.Slots.Set(key, val)
	m.Touch(now)
}

func (m *Memory) MergeSlots(slots contractx.Slots, now time.Time) {
	m.Slots.Merge(slots)
	m.Touch(now)
}

func (m *Memory) SetContext(key string, val any, now time.Time) {
	if m.Context == nil {
		m.Context = make(map[string]any, 4)
	}
	m.Context[key] = val
	m.Touch(now)
}

// AppendHistory adds an entry and drops the oldest ones past MaxHistory.
func (m *Memory) AppendHistory(entry contractx.HistoryEntry, now time.Time) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now.UTC()
	}
	if len(m.History) < MaxHistory {
		m.History = append(m.History, entry)
	} else {
		copy(m.History, m.History[len(m.History)-MaxHistory+1:])
		m.History = m.History[:MaxHistory]
		m.History[MaxHistory-1] = entry
	}
	m.Touch(now)
}

// Reset empties the record in place; the session id and Seeded survive.
func (m *Memory) Reset(now time.Time) {
	m.Slots = contractx.Slots{}
	m.Context = make(map[string]any, 4)
	m.History = make([]contractx.HistoryEntry, 0, 8)
	m.Touch(now)
}

// Seed appends entries as prior history, but only on the session's first
// turn. It reports whether the entries were taken.
func (m *Memory) Seed(entries []contractx.HistoryEntry, now time.Time) bool {
	if m.Seeded {
		return false
	}
	m.Seeded = true
	for _, entry := range entries {
		m.AppendHistory(entry, now)
	}
	m.Touch(now)
	return true
}

// LastOutlets returns the entities cached by the most recent outlet lookup.
func (m *Memory) LastOutlets() []contractx.Outlet {
	if m == nil || m.Context == nil {
		return nil
	}
	outlets, _ := m.Context[ContextLastOutlets].([]contractx.Outlet)
	return outlets
}

func (m *Memory) Summary() contractx.MemorySummary {
	return contractx.MemorySummary{
		Slots:         m.Slots.Map(),
		ContextKeys:   contractx.SortedKeys(m.Context),
		HistoryLength: len(m.History),
		LastUpdated:   m.LastUpdated,
	}
}

// Clone returns a copy that shares no mutable containers with m.
func (m *Memory) Clone() Memory {
	out := Memory{
		SessionID:   m.SessionID,
		Slots:       m.Slots.Clone(),
		Context:     make(map[string]any, len(m.Context)),
		History:     append([]contractx.HistoryEntry(nil), m.History...),
		LastUpdated: m.LastUpdated,
		Seeded:      m.Seeded,
	}
	for k, v := range m.Context {
		if outlets, ok := v.([]contractx.Outlet); ok {
			v = append([]contractx.Outlet(nil), outlets...)
		}
		out.Context[k] = v
	}
	return out
}
