package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

// WriteMemory records the reply, merges the turn's slots and refreshes the
// outlet cache after a successful lookup.
func WriteMemory(in *GraphState, store MemoryStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := store.AppendEntry(in.SessionID, contractx.HistoryEntry{
		Role:    contractx.RoleAssistant,
		Content: in.Reply,
	}); err != nil {
		return nil, err
	}
	if !in.Intent.Slots.IsZero() {
		if err := store.MergeSlots(in.SessionID, in.Intent.Slots); err != nil {
			return nil, err
		}
	}
	if len(in.FreshOutlets) > 0 {
		if err := store.UpdateContext(in.SessionID, statex.ContextLastOutlets, in.FreshOutlets); err != nil {
			return nil, err
		}
	}
	return in, nil
}
