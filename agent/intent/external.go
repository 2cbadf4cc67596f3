package intent

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	slotsx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/slots"
	"github.com/tidwall/gjson"
)

// tryExternalClassify asks the completion backend for a classification.
// Every error it returns wraps ErrClassificationFallback.
func (c *Classifier) tryExternalClassify(ctx context.Context, in Input) (contractx.IntentResult, error) {
	if c.externalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.externalTimeout)
		defer cancel()
	}

	raw, err := c.completer.Complete(ctx, c.systemPrompt, in.Text)
	if err != nil {
		return contractx.IntentResult{}, fmt.Errorf("%w: %w: %v", contractx.ErrClassificationFallback, contractx.ErrModelInvoke, err)
	}
	res, err := parseClassification(raw)
	if err != nil {
		return contractx.IntentResult{}, fmt.Errorf("%w: %w", contractx.ErrClassificationFallback, err)
	}
	return completeSlots(res, in), nil
}

func parseClassification(raw string) (contractx.IntentResult, error) {
	obj := firstJSONObject(raw)
	if obj == "" || !gjson.Valid(obj) {
		return contractx.IntentResult{}, fmt.Errorf("%w: no json object in reply", contractx.ErrSchemaViolation)
	}

	parsed := gjson.Parse(obj)
	intent := contractx.Intent(strings.ToLower(strings.TrimSpace(parsed.Get("intent").String())))
	// only the reset rule may clear memory
	if !intent.Valid() || intent == contractx.IntentReset {
		return contractx.IntentResult{}, fmt.Errorf("%w: unsupported intent %q", contractx.ErrSchemaViolation, intent)
	}

	confidence := 0.5
	if v := parsed.Get("confidence"); v.Exists() {
		confidence = clamp(v.Float())
	}

	var slots contractx.Slots
	parsed.Get("slots").ForEach(func(key, value gjson.Result) bool {
		k := strings.TrimSpace(key.String())
		switch k {
		case "":
		case contractx.SlotExpression, contractx.SlotQuery, contractx.SlotFollowup, contractx.SlotReference:
			slots.Set(k, value.String())
		default:
			slots.Set(k, value.Value())
		}
		return true
	})
	if slots.Followup != "" && !slots.Followup.Valid() {
		slots.Followup = ""
	}

	return contractx.IntentResult{
		Intent:       intent,
		Confidence:   confidence,
		Slots:        slots,
		MissingSlots: []string{},
	}, nil
}

// completeSlots backfills a required slot the model left out using the
// rule extractors, then recomputes MissingSlots.
func completeSlots(res contractx.IntentResult, in Input) contractx.IntentResult {
	switch res.Intent {
	case contractx.IntentCalculator:
		if len(res.Slots.Expression) < slotsx.MinValueLength {
			res.Slots.Expression = slotsx.ExtractExpression(in.Text)
		}
	case contractx.IntentProductSearch:
		if len(res.Slots.Query) < slotsx.MinValueLength {
			res.Slots.Query = slotsx.ExtractProductQuery(in.Text)
		}
	case contractx.IntentOutletQuery:
		if len(res.Slots.Query) < slotsx.MinValueLength {
			res.Slots.Query = slotsx.ExtractLocationQuery(in.Text)
		}
	}

	out := withRequiredSlot(res.Intent, res.Slots)
	out.Confidence = res.Confidence
	return out
}

// firstJSONObject returns the first balanced {...} in s, skipping braces
// inside string literals.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
