package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

func FinalizeReply(in *GraphState, store MemoryStore) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = DefaultReply
	}
	summary, err := store.Summarize(in.SessionID)
	if err != nil {
		return GraphOutput{}, err
	}

	return GraphOutput{Result: contractx.TurnResult{
		Response:  reply,
		ToolCalls: in.ToolCalls,
		Intent:    in.Intent.Intent,
		Memory:    summary,
	}}, nil
}
