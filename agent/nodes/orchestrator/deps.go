package orchestratornode

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

// MemoryStore is the subset of state.Store the turn nodes use.
type MemoryStore interface {
	GetOrCreate(sessionID string) (statex.Memory, error)
	AppendEntry(sessionID string, entry contractx.HistoryEntry) error
	SeedHistory(sessionID string, entries []contractx.HistoryEntry) (bool, error)
	MergeSlots(sessionID string, slots contractx.Slots) error
	UpdateContext(sessionID string, key string, val any) error
	Clear(sessionID string) error
	Summarize(sessionID string) (contractx.MemorySummary, error)
}

type Classifier interface {
	Analyze(ctx context.Context, text string, mem *statex.Memory) contractx.IntentResult
}

// Tools invokes the external tools; every call yields exactly one record.
type Tools interface {
	Calculate(ctx context.Context, expression string) contractx.ToolCallRecord
	SearchProducts(ctx context.Context, query string, topK int) contractx.ToolCallRecord
	FindOutlets(ctx context.Context, query string) contractx.ToolCallRecord
}

// ReplyConfig tunes reply formatting.
type ReplyConfig struct {
	DisplayCap   int
	NarrowingCap int
	ProductTopK  int
}

func DefaultReplyConfig() ReplyConfig {
	return ReplyConfig{DisplayCap: 15, NarrowingCap: 20, ProductTopK: 3}
}
