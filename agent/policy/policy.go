// Package policy decides which action a classified turn takes.
package policy

import (
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// Select is a pure decision table over intent and slot completeness.
// Reset wins over everything; a missing slot always means clarification.
func Select(intent contractx.Intent, slots contractx.Slots, missing []string) contractx.Action {
	if intent == contractx.IntentReset {
		return contractx.ActionResetMemory
	}
	if len(missing) > 0 {
		return contractx.ActionAskClarification
	}

	switch intent {
	case contractx.IntentCalculator:
		return contractx.ActionCallCalculator
	case contractx.IntentProductSearch:
		return contractx.ActionCallProducts
	case contractx.IntentOutletQuery:
		return contractx.ActionCallOutlets
	default:
		return contractx.ActionGeneralResponse
	}
}

// ForResult is Select applied to a classifier result.
func ForResult(r contractx.IntentResult) contractx.Action {
	return Select(r.Intent, r.Slots, r.MissingSlots)
}
