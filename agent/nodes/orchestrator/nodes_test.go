package orchestratornode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return fixedNow }

	_, err := ValidateRequest(GraphInput{SessionID: " ", Request: contractx.TurnRequest{Message: "hi"}}, now)
	require.ErrorIs(t, err, contractx.ErrInvalidSession)
	require.ErrorIs(t, err, contractx.ErrValidation)

	_, err = ValidateRequest(GraphInput{SessionID: "s1", Request: contractx.TurnRequest{Message: "\n\t"}}, now)
	require.ErrorIs(t, err, contractx.ErrInvalidMessage)

	st, err := ValidateRequest(GraphInput{SessionID: " s1 ", Request: contractx.TurnRequest{Message: "  hello  "}}, now)
	require.NoError(t, err)
	assert.Equal(t, "s1", st.SessionID)
	assert.Equal(t, "hello", st.Text)
	assert.Equal(t, fixedNow, st.Now)
}

func TestRoute(t *testing.T) {
	t.Parallel()

	cases := map[contractx.Action]string{
		contractx.ActionResetMemory:      BranchReset,
		contractx.ActionAskClarification: BranchClarify,
		contractx.ActionCallCalculator:   BranchTool,
		contractx.ActionCallProducts:     BranchTool,
		contractx.ActionCallOutlets:      BranchTool,
		contractx.ActionGeneralResponse:  BranchGeneral,
	}
	for action, want := range cases {
		got, err := Route(&GraphState{Action: action})
		require.NoError(t, err)
		assert.Equal(t, want, got, action)
	}

	_, err := Route(nil)
	require.ErrorIs(t, err, contractx.ErrValidation)
}

func TestLoadMemorySeedsOnlyFirstTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	seed := []contractx.HistoryEntry{
		{Role: contractx.RoleUser, Content: "earlier question"},
		{Role: contractx.RoleAssistant, Content: ""},
		{Role: "tool", Content: "dropped"},
		{Role: contractx.RoleAssistant, Content: "earlier answer"},
	}

	st, err := LoadMemory(&GraphState{SessionID: "s1", Text: "hello", Seed: seed, Now: fixedNow}, store)
	require.NoError(t, err)
	require.Len(t, st.Memory.History, 3)
	assert.Equal(t, "earlier question", st.Memory.History[0].Content)
	assert.Equal(t, "earlier answer", st.Memory.History[1].Content)
	assert.Equal(t, "hello", st.Memory.History[2].Content)
	assert.Equal(t, fixedNow, st.Memory.History[2].Timestamp)

	st, err = LoadMemory(&GraphState{SessionID: "s1", Text: "again", Seed: seed, Now: fixedNow}, store)
	require.NoError(t, err)
	assert.Len(t, st.Memory.History, 4)
}

func TestLoadMemoryDoesNotSeedAfterReset(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	seed := []contractx.HistoryEntry{{Role: contractx.RoleUser, Content: "earlier question"}}

	_, err := LoadMemory(&GraphState{SessionID: "s1", Text: "hello", Now: fixedNow}, store)
	require.NoError(t, err)
	_, err = Reset(&GraphState{SessionID: "s1"}, store)
	require.NoError(t, err)

	st, err := LoadMemory(&GraphState{SessionID: "s1", Text: "again", Seed: seed, Now: fixedNow}, store)
	require.NoError(t, err)
	require.Len(t, st.Memory.History, 1)
	assert.Equal(t, "again", st.Memory.History[0].Content)
}

func TestWriteMemory(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	require.NoError(t, store.UpdateContext("s1", statex.ContextLastOutlets, []contractx.Outlet{{ID: 9}}))

	in := &GraphState{
		SessionID: "s1",
		Intent:    contractx.IntentResult{Intent: contractx.IntentOutletQuery, Slots: contractx.Slots{Query: "PJ"}},
		Reply:     "done",
	}
	_, err := WriteMemory(in, store)
	require.NoError(t, err)

	mem, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	require.Len(t, mem.History, 1)
	assert.Equal(t, contractx.RoleAssistant, mem.History[0].Role)
	assert.Equal(t, "PJ", mem.Slots.Query)
	assert.Equal(t, []contractx.Outlet{{ID: 9}}, mem.LastOutlets(), "no fresh results keeps the cache")

	in.FreshOutlets = []contractx.Outlet{{ID: 1}, {ID: 2}}
	_, err = WriteMemory(in, store)
	require.NoError(t, err)
	mem, err = store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, in.FreshOutlets, mem.LastOutlets())
}

func TestResetClearsWithoutRecording(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	require.NoError(t, store.AppendHistory("s1", contractx.RoleUser, "hello"))
	require.NoError(t, store.MergeSlots("s1", contractx.Slots{Expression: "1 + 1"}))

	out, err := Reset(&GraphState{SessionID: "s1", Intent: contractx.IntentResult{Intent: contractx.IntentReset}}, store)
	require.NoError(t, err)
	assert.Equal(t, ResetReply, out.Result.Response)
	assert.Equal(t, contractx.IntentReset, out.Result.Intent)
	assert.Equal(t, 0, out.Result.Memory.HistoryLength)
	assert.Empty(t, out.Result.Memory.Slots)
}

func TestClarifyLeavesMemoryUntouched(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	require.NoError(t, store.AppendHistory("s1", contractx.RoleUser, "find products"))

	out, err := Clarify(&GraphState{
		SessionID: "s1",
		Intent: contractx.IntentResult{
			Intent:       contractx.IntentProductSearch,
			MissingSlots: []string{contractx.SlotQuery},
		},
	}, store)
	require.NoError(t, err)
	assert.Equal(t, "What products are you looking for? Please describe what you'd like to find.", out.Result.Response)
	assert.Empty(t, out.Result.ToolCalls)
	assert.Equal(t, 1, out.Result.Memory.HistoryLength)
}

func TestFinalizeReplyDefaultsBlankReply(t *testing.T) {
	t.Parallel()

	store := statex.NewStore()
	out, err := FinalizeReply(&GraphState{SessionID: "s1", Reply: "  ", Intent: contractx.IntentResult{Intent: contractx.IntentGeneralChat}}, store)
	require.NoError(t, err)
	assert.Equal(t, DefaultReply, out.Result.Response)
	assert.Equal(t, contractx.IntentGeneralChat, out.Result.Intent)
}
