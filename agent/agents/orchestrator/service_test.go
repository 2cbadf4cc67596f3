package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	intentx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/intent"
	nodex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
	toolx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/tool"
)

type fakeOutlets struct {
	mu      sync.Mutex
	results map[string][]contractx.Outlet
	err     error
	queries []string
}

func (f *fakeOutlets) FindOutlets(_ context.Context, req contractx.OutletQueryRequest) (contractx.OutletQueryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, req.NaturalLanguageQuery)
	if f.err != nil {
		return contractx.OutletQueryResponse{}, f.err
	}
	return contractx.OutletQueryResponse{
		Results:        f.results[req.NaturalLanguageQuery],
		GeneratedQuery: "SELECT * FROM outlets",
	}, nil
}

func (f *fakeOutlets) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeProducts struct{}

func (fakeProducts) SearchProducts(_ context.Context, req contractx.ProductSearchRequest) (contractx.ProductSearchResponse, error) {
	return contractx.ProductSearchResponse{
		Results: []contractx.Product{
			{Name: "ZUS All Day Cup", Price: "RM 55.00"},
			{Name: "ZUS OG Tumbler", Price: "RM 79.00"},
		},
		Summary: fmt.Sprintf("Top matches for %s.", req.Query),
	}, nil
}

var (
	ss2      = contractx.Outlet{ID: 1, Name: "ZUS Coffee – SS 2", Location: "Jalan SS 2/24, Petaling Jaya", District: "Petaling Jaya", Hours: "8:00 AM - 10:00 PM"}
	uptown   = contractx.Outlet{ID: 2, Name: "ZUS Coffee – Damansara Uptown", Location: "Jalan SS 21/39, Petaling Jaya", District: "Petaling Jaya", Hours: "7:00 AM - 11:00 PM"}
	section  = contractx.Outlet{ID: 3, Name: "ZUS Coffee – Section 17", Location: "Jalan 17/45, Petaling Jaya", District: "Petaling Jaya", Hours: "9:00 AM - 9:00 PM"}
	bangsar  = contractx.Outlet{ID: 4, Name: "ZUS Coffee – Bangsar", Location: "Jalan Telawi, Bangsar", District: "Kuala Lumpur", Hours: "Opens 7:00 AM – Closes 11:00 PM", Services: "Dine-in, Takeaway"}
	pjResult = []contractx.Outlet{ss2, uptown, section}
)

func newTestOrchestrator(t *testing.T, outlets *fakeOutlets) (*Orchestrator, *statex.Store) {
	t.Helper()

	cfg := toolx.DefaultConfig()
	cfg.Timeout = 200 * time.Millisecond
	cfg.MaxRetries = 0

	store := statex.NewStore()
	gateway := toolx.NewGateway(toolx.NewExecutor(cfg), toolx.LocalCalculator{}, fakeProducts{}, outlets)
	o, err := New(store, intentx.New(), gateway, DefaultConfig())
	require.NoError(t, err)
	return o, store
}

func ask(t *testing.T, o *Orchestrator, sessionID string, msg string) contractx.TurnResult {
	t.Helper()
	res, err := o.HandleTurn(context.Background(), sessionID, contractx.TurnRequest{Message: msg})
	require.NoError(t, err)
	return res
}

func TestHandleTurnCalculator(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	res := ask(t, o, "s1", "What's 2 + 2?")

	assert.Equal(t, contractx.IntentCalculator, res.Intent)
	assert.Equal(t, "The answer is 4.", res.Response)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, toolx.ToolCalculator, res.ToolCalls[0].Tool)
	assert.Equal(t, map[string]any{"expression": "2 + 2"}, res.ToolCalls[0].Input)
	assert.True(t, res.ToolCalls[0].Output.Success)
	assert.Equal(t, 2, res.Memory.HistoryLength)
	assert.Equal(t, "2 + 2", res.Memory.Slots[contractx.SlotExpression])
}

func TestHandleTurnCalculatorDomainError(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	res := ask(t, o, "s1", "calculate 1 / 0")

	assert.Equal(t, "Sorry, I couldn't calculate that: division by zero.", res.Response)
	require.Len(t, res.ToolCalls, 1)
	assert.False(t, res.ToolCalls[0].Output.Success)
}

func TestHandleTurnOutletFollowupUsesCache(t *testing.T) {
	t.Parallel()

	outlets := &fakeOutlets{results: map[string][]contractx.Outlet{"Petaling Jaya": pjResult}}
	o, _ := newTestOrchestrator(t, outlets)

	first := ask(t, o, "s1", "Find outlets in Petaling Jaya")
	assert.Equal(t, contractx.IntentOutletQuery, first.Intent)
	require.Len(t, first.ToolCalls, 1)
	assert.Equal(t, map[string]any{"naturalLanguageQuery": "Petaling Jaya"}, first.ToolCalls[0].Input)
	assert.Contains(t, first.Response, "1. ZUS Coffee – SS 2 — Jalan SS 2/24, Petaling Jaya")
	assert.True(t, strings.HasSuffix(first.Response, "Which outlet are you referring to?"))
	assert.Equal(t, []string{statex.ContextLastOutlets}, first.Memory.ContextKeys)

	second := ask(t, o, "s1", "SS 2, what's the opening time?")
	assert.Equal(t, contractx.IntentOutletQuery, second.Intent)
	assert.Equal(t, string(contractx.FollowupHours), second.Memory.Slots[contractx.SlotFollowup])
	assert.Equal(t, "ZUS Coffee – SS 2 is open 8:00 AM - 10:00 PM.", second.Response)
	assert.Empty(t, second.ToolCalls)
	assert.Equal(t, 1, outlets.calls(), "follow-up must be answered from last_outlets")
	assert.Equal(t, 4, second.Memory.HistoryLength)
}

func TestHandleTurnFollowupOpenAndCloseTimes(t *testing.T) {
	t.Parallel()

	outlets := &fakeOutlets{results: map[string][]contractx.Outlet{"Bangsar": {bangsar}}}
	o, _ := newTestOrchestrator(t, outlets)

	first := ask(t, o, "s1", "Any outlets in Bangsar?")
	assert.Equal(t, "ZUS Coffee – Bangsar is located at Jalan Telawi, Bangsar and is open Opens 7:00 AM – Closes 11:00 PM.", first.Response)

	assert.Equal(t, "ZUS Coffee – Bangsar closes at 11:00 PM.", ask(t, o, "s1", "When does it close?").Response)
	assert.Equal(t, "ZUS Coffee – Bangsar opens at 7:00 AM.", ask(t, o, "s1", "What time does it open?").Response)
	assert.Equal(t, "ZUS Coffee – Bangsar offers: Dine-in, Takeaway.", ask(t, o, "s1", "What services does it have?").Response)
	assert.Equal(t, 1, outlets.calls())
}

func TestHandleTurnFollowupUnknownOutlet(t *testing.T) {
	t.Parallel()

	outlets := &fakeOutlets{results: map[string][]contractx.Outlet{"Petaling Jaya": pjResult}}
	o, store := newTestOrchestrator(t, outlets)

	ask(t, o, "s1", "Find outlets in Petaling Jaya")
	res := ask(t, o, "s1", "What are the hours for Kepong outlet?")

	assert.Equal(t, "Sorry, I couldn't find information about 'Kepong'.", res.Response)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, map[string]any{"naturalLanguageQuery": "Kepong"}, res.ToolCalls[0].Input)

	mem, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Len(t, mem.LastOutlets(), 3, "an empty lookup keeps the previous cache")
}

func TestHandleTurnAmbiguousFollowupAsksWhichOutlet(t *testing.T) {
	t.Parallel()

	outlets := &fakeOutlets{results: map[string][]contractx.Outlet{"Petaling Jaya": pjResult}}
	o, _ := newTestOrchestrator(t, outlets)

	ask(t, o, "s1", "Find outlets in Petaling Jaya")
	res := ask(t, o, "s1", "What time does it close?")

	assert.Equal(t, contractx.IntentOutletQuery, res.Intent)
	assert.Equal(t, "Which outlet are you referring to? Please mention its name or area.", res.Response)
	assert.Empty(t, res.ToolCalls)
}

func TestHandleTurnReset(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	ask(t, o, "s1", "What's 2 + 2?")
	ask(t, o, "s1", "hello")

	res := ask(t, o, "s1", "reset")
	assert.Equal(t, contractx.IntentReset, res.Intent)
	assert.Equal(t, nodex.ResetReply, res.Response)
	assert.Empty(t, res.ToolCalls)
	assert.Equal(t, 0, res.Memory.HistoryLength)
	assert.Empty(t, res.Memory.Slots)
	assert.Empty(t, res.Memory.ContextKeys)
}

func TestHandleTurnClarificationSkipsToolsAndSlots(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	res := ask(t, o, "s1", "calculate")

	assert.Equal(t, contractx.IntentCalculator, res.Intent)
	assert.Equal(t, "What would you like me to calculate? Please provide a mathematical expression.", res.Response)
	assert.Empty(t, res.ToolCalls)
	assert.Empty(t, res.Memory.Slots)
	assert.Equal(t, 1, res.Memory.HistoryLength)
}

func TestHandleTurnProducts(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	res := ask(t, o, "s1", "Show me tumblers")

	assert.Equal(t, contractx.IntentProductSearch, res.Intent)
	assert.Equal(t, "I found 2 product(s):\n1. ZUS All Day Cup - RM 55.00\n2. ZUS OG Tumbler - RM 79.00\n\nTop matches for tumblers.", res.Response)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, map[string]any{"query": "tumblers", "topK": 3}, res.ToolCalls[0].Input)
}

func TestHandleTurnGeneral(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	assert.Equal(t, nodex.GreetingReply, ask(t, o, "s1", "hello").Response)
	assert.Equal(t, nodex.HelpReply, ask(t, o, "s1", "help").Response)
	assert.Equal(t, nodex.DefaultReply, ask(t, o, "s1", "tell me a joke").Response)
}

func TestHandleTurnToolFailureAndOpenCircuit(t *testing.T) {
	t.Parallel()

	outlets := &fakeOutlets{err: errors.New("connection refused")}
	o, _ := newTestOrchestrator(t, outlets)

	for i := 0; i < 3; i++ {
		res := ask(t, o, "s1", "Find outlets in Petaling Jaya")
		assert.Equal(t, "Sorry, I couldn't search for outlets.", res.Response)
		require.Len(t, res.ToolCalls, 1)
		assert.False(t, res.ToolCalls[0].Output.Success)
	}

	res := ask(t, o, "s1", "Find outlets in Petaling Jaya")
	assert.Equal(t, "Sorry, outlets is temporarily unavailable. Please try again later.", res.Response)
	require.Len(t, res.ToolCalls, 1)
	assert.False(t, res.ToolCalls[0].Output.Success)
	assert.Equal(t, 3, outlets.calls())
}

func TestHandleTurnRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})

	_, err := o.HandleTurn(context.Background(), "  ", contractx.TurnRequest{Message: "hi"})
	require.ErrorIs(t, err, contractx.ErrInvalidSession)
	require.ErrorIs(t, err, contractx.ErrValidation)

	_, err = o.HandleTurn(context.Background(), "s1", contractx.TurnRequest{Message: "   "})
	require.ErrorIs(t, err, contractx.ErrInvalidMessage)
}

func TestHandleTurnSeedsHistoryOnce(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	seed := []contractx.HistoryEntry{
		{Role: contractx.RoleUser, Content: "hi"},
		{Role: contractx.RoleAssistant, Content: "Hello!"},
		{Role: "system", Content: "ignored"},
	}

	res, err := o.HandleTurn(context.Background(), "s1", contractx.TurnRequest{Message: "hello", History: seed})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Memory.HistoryLength)

	res, err = o.HandleTurn(context.Background(), "s1", contractx.TurnRequest{Message: "hello", History: seed})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Memory.HistoryLength)
}

func TestHandleTurnResetIsNotRefilledFromRequestHistory(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, &fakeOutlets{})
	transcript := []contractx.HistoryEntry{
		{Role: contractx.RoleUser, Content: "hi"},
		{Role: contractx.RoleAssistant, Content: "Hello!"},
	}

	res, err := o.HandleTurn(context.Background(), "s1", contractx.TurnRequest{Message: "What's 2 + 2?", History: transcript})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Memory.HistoryLength)

	res = ask(t, o, "s1", "reset")
	assert.Equal(t, 0, res.Memory.HistoryLength)

	transcript = append(transcript,
		contractx.HistoryEntry{Role: contractx.RoleUser, Content: "What's 2 + 2?"},
		contractx.HistoryEntry{Role: contractx.RoleAssistant, Content: "The answer is 4."},
		contractx.HistoryEntry{Role: contractx.RoleUser, Content: "reset"},
	)
	res, err = o.HandleTurn(context.Background(), "s1", contractx.TurnRequest{Message: "hello", History: transcript})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Memory.HistoryLength)
}

func TestHandleTurnSerializesSameSession(t *testing.T) {
	t.Parallel()

	o, store := newTestOrchestrator(t, &fakeOutlets{})
	const turns = 20

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := o.HandleTurn(context.Background(), "shared", contractx.TurnRequest{Message: fmt.Sprintf("What's %d + 1?", i)}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	mem, err := store.GetOrCreate("shared")
	require.NoError(t, err)
	require.Len(t, mem.History, 2*turns)
	for i := 0; i < len(mem.History); i += 2 {
		assert.Equal(t, contractx.RoleUser, mem.History[i].Role)
		assert.Equal(t, contractx.RoleAssistant, mem.History[i+1].Role)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	gateway := toolx.NewGateway(toolx.NewExecutor(toolx.DefaultConfig()), toolx.LocalCalculator{}, nil, nil)
	_, err := New(nil, intentx.New(), gateway, DefaultConfig())
	require.Error(t, err)

	_, err = New(statex.NewStore(), nil, gateway, DefaultConfig())
	require.Error(t, err)

	bad := DefaultConfig()
	bad.NarrowingCap = 1
	_, err = New(statex.NewStore(), intentx.New(), gateway, bad)
	require.ErrorIs(t, err, contractx.ErrValidation)
}
