package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

const ResetReply = "I've cleared our conversation. How can I help you?"

// Reset clears the session. The acknowledgement is not recorded, so the
// returned summary always has an empty history.
func Reset(in *GraphState, store MemoryStore) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := store.Clear(in.SessionID); err != nil {
		return GraphOutput{}, err
	}
	summary, err := store.Summarize(in.SessionID)
	if err != nil {
		return GraphOutput{}, err
	}

	return GraphOutput{Result: contractx.TurnResult{
		Response: ResetReply,
		Intent:   in.Intent.Intent,
		Memory:   summary,
	}}, nil
}
