package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

type GraphInput struct {
	SessionID string
	Request   contractx.TurnRequest
}

type GraphOutput struct {
	Result contractx.TurnResult
}

type GraphState struct {
	SessionID string
	Text      string
	Seed      []contractx.HistoryEntry
	Now       time.Time

	// Memory is the snapshot taken after the user message was recorded.
	Memory statex.Memory
	Intent contractx.IntentResult
	Action contractx.Action

	ToolCalls []contractx.ToolCallRecord
	Reply     string
	// FreshOutlets holds the results of a lookup made this turn; they
	// replace the session's last_outlets.
	FreshOutlets []contractx.Outlet
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, contractx.ErrInvalidSession)
	}

	text := strings.TrimSpace(in.Request.Message)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, contractx.ErrInvalidMessage)
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Seed:      in.Request.History,
		Now:       nowFn().UTC(),
	}, nil
}
