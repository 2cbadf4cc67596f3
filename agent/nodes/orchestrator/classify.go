package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	policyx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/policy"
)

const (
	BranchReset   = "reset"
	BranchClarify = "clarify"
	BranchTool    = "call_tool"
	BranchGeneral = "general_response"
)

func Classify(ctx context.Context, in *GraphState, classifier Classifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Intent = classifier.Analyze(ctx, in.Text, &in.Memory)
	in.Action = policyx.ForResult(in.Intent)

	log.Debug().
		Str("session_id", in.SessionID).
		Str("intent", string(in.Intent.Intent)).
		Float64("confidence", in.Intent.Confidence).
		Strs("missing_slots", in.Intent.MissingSlots).
		Str("action", string(in.Action)).
		Msg("turn classified")
	return in, nil
}

// Route picks the graph branch for the selected action.
func Route(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	switch {
	case in.Action == contractx.ActionResetMemory:
		return BranchReset, nil
	case in.Action == contractx.ActionAskClarification:
		return BranchClarify, nil
	case in.Action.IsToolCall():
		return BranchTool, nil
	default:
		return BranchGeneral, nil
	}
}
