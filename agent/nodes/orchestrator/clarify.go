package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// Clarify answers with a prompt for the missing slot. Nothing is merged
// into memory and no tool is called.
func Clarify(in *GraphState, store MemoryStore) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	summary, err := store.Summarize(in.SessionID)
	if err != nil {
		return GraphOutput{}, err
	}

	return GraphOutput{Result: contractx.TurnResult{
		Response: ClarificationMessage(in.Intent),
		Intent:   in.Intent.Intent,
		Memory:   summary,
	}}, nil
}

func ClarificationMessage(r contractx.IntentResult) string {
	switch r.Intent {
	case contractx.IntentCalculator:
		return "What would you like me to calculate? Please provide a mathematical expression."
	case contractx.IntentProductSearch:
		return "What products are you looking for? Please describe what you'd like to find."
	case contractx.IntentOutletQuery:
		if r.Slots.Followup != "" {
			return "Which outlet are you referring to? Please mention its name or area."
		}
		return "Where would you like to find outlets? Please specify a location."
	default:
		return "Could you please provide more details?"
	}
}
