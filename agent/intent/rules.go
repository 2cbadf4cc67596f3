package intent

import (
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	resolverx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/resolver"
	slotsx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/slots"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

const (
	ConfidenceReset    = 0.9
	ConfidenceFollowup = 0.9
	ConfidenceRule     = 0.8
	ConfidenceDefault  = 0.5
)

// Input is what every rule sees. Memory may be nil.
type Input struct {
	Text   string
	Lower  string
	Memory *statex.Memory
}

func NewInput(text string, mem *statex.Memory) Input {
	return Input{Text: text, Lower: slotsx.Normalize(text), Memory: mem}
}

// Rule is one entry of the ordered classification table.
type Rule interface {
	Name() string
	Match(in Input) (contractx.IntentResult, bool)
}

var resetPhrases = []string{"reset", "clear", "start over", "new conversation"}

type ResetRule struct{}

func (ResetRule) Name() string { return "reset" }

func (ResetRule) Match(in Input) (contractx.IntentResult, bool) {
	for _, p := range resetPhrases {
		if strings.Contains(in.Lower, p) {
			return contractx.IntentResult{Intent: contractx.IntentReset, Confidence: ConfidenceReset}, true
		}
	}
	return contractx.IntentResult{}, false
}

// FollowupRule handles questions about an outlet listed by an earlier
// lookup. It never fires without cached outlets.
type FollowupRule struct{}

func (FollowupRule) Name() string { return "followup" }

func (FollowupRule) Match(in Input) (contractx.IntentResult, bool) {
	kind, ok := slotsx.DetectFollowup(in.Text)
	if !ok {
		return contractx.IntentResult{}, false
	}
	outlets := in.Memory.LastOutlets()
	if len(outlets) == 0 {
		return contractx.IntentResult{}, false
	}

	refs := slotsx.OutletReferences(in.Text)
	for _, ref := range refs {
		if o, found := resolverx.Resolve(ref, outlets); found {
			return followupResult(kind, o.Name, ref), true
		}
	}
	if len(outlets) == 1 {
		return followupResult(kind, outlets[0].Name, outlets[0].Name), true
	}

	timeQuestion := kind == contractx.FollowupHours || kind == contractx.FollowupOpenTime || kind == contractx.FollowupCloseTime
	switch {
	case len(refs) > 0 && timeQuestion:
		// unknown to the cache; the orchestrator looks it up by name
		return followupResult(kind, refs[0], refs[0]), true
	case len(refs) == 0:
		res := followupResult(kind, "", "")
		res.MissingSlots = []string{contractx.SlotQuery}
		return res, true
	default:
		return contractx.IntentResult{}, false
	}
}

func followupResult(kind contractx.Followup, query, reference string) contractx.IntentResult {
	return contractx.IntentResult{
		Intent:     contractx.IntentOutletQuery,
		Confidence: ConfidenceFollowup,
		Slots: contractx.Slots{
			Query:     query,
			Followup:  kind,
			Reference: reference,
		},
		MissingSlots: []string{},
	}
}

type CalculatorRule struct{}

func (CalculatorRule) Name() string { return "calculator" }

func (CalculatorRule) Match(in Input) (contractx.IntentResult, bool) {
	if !slotsx.IsCalculation(in.Text) {
		return contractx.IntentResult{}, false
	}
	return withRequiredSlot(contractx.IntentCalculator, contractx.Slots{Expression: slotsx.ExtractExpression(in.Text)}), true
}

type ProductRule struct{}

func (ProductRule) Name() string { return "products" }

func (ProductRule) Match(in Input) (contractx.IntentResult, bool) {
	if !slotsx.IsProductRequest(in.Text) {
		return contractx.IntentResult{}, false
	}
	return withRequiredSlot(contractx.IntentProductSearch, contractx.Slots{Query: slotsx.ExtractProductQuery(in.Text)}), true
}

type OutletRule struct{}

func (OutletRule) Name() string { return "outlets" }

func (OutletRule) Match(in Input) (contractx.IntentResult, bool) {
	if !slotsx.IsOutletRequest(in.Text) {
		return contractx.IntentResult{}, false
	}
	return withRequiredSlot(contractx.IntentOutletQuery, contractx.Slots{Query: slotsx.ExtractLocationQuery(in.Text)}), true
}

// withRequiredSlot fills MissingSlots from the intent's required slot.
func withRequiredSlot(intent contractx.Intent, slots contractx.Slots) contractx.IntentResult {
	res := contractx.IntentResult{
		Intent:       intent,
		Confidence:   ConfidenceRule,
		Slots:        slots,
		MissingSlots: []string{},
	}
	if key, ok := intent.RequiredSlot(); ok {
		v, _ := slots.Get(key)
		if s, _ := v.(string); len(strings.TrimSpace(s)) < slotsx.MinValueLength {
			res.MissingSlots = []string{key}
		}
	}
	return res
}

func generalResult() contractx.IntentResult {
	return contractx.IntentResult{
		Intent:       contractx.IntentGeneralChat,
		Confidence:   ConfidenceDefault,
		MissingSlots: []string{},
	}
}
