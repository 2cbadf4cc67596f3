package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// LoadMemory records the user message and snapshots the session. The
// request's history seeds the session on its first turn only, so a reset
// session is not refilled from a client transcript.
func LoadMemory(in *GraphState, store MemoryStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	seed := make([]contractx.HistoryEntry, 0, len(in.Seed))
	for _, entry := range in.Seed {
		if validSeed(entry) {
			seed = append(seed, entry)
		}
	}
	if _, err := store.SeedHistory(in.SessionID, seed); err != nil {
		return nil, err
	}

	if err := store.AppendEntry(in.SessionID, contractx.HistoryEntry{
		Role:      contractx.RoleUser,
		Content:   in.Text,
		Timestamp: in.Now,
	}); err != nil {
		return nil, err
	}

	mem, err := store.GetOrCreate(in.SessionID)
	if err != nil {
		return nil, err
	}
	in.Memory = mem
	return in, nil
}

func validSeed(entry contractx.HistoryEntry) bool {
	if strings.TrimSpace(entry.Content) == "" {
		return false
	}
	return entry.Role == contractx.RoleUser || entry.Role == contractx.RoleAssistant
}
