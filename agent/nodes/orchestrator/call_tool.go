package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	resolverx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/resolver"
)

// CallTool runs the tool picked by the action selector and formats its reply.
func CallTool(ctx context.Context, in *GraphState, tools Tools, cfg ReplyConfig) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	slots := in.Intent.Slots
	switch in.Action {
	case contractx.ActionCallCalculator:
		rec := tools.Calculate(ctx, slots.Expression)
		in.ToolCalls = append(in.ToolCalls, rec)
		in.Reply = FormatCalculator(rec.Output)
	case contractx.ActionCallProducts:
		rec := tools.SearchProducts(ctx, slots.Query, cfg.ProductTopK)
		in.ToolCalls = append(in.ToolCalls, rec)
		in.Reply = FormatProducts(rec.Output)
	case contractx.ActionCallOutlets:
		callOutlets(ctx, in, tools, cfg)
	default:
		return nil, fmt.Errorf("%w: action %q is not a tool call", contractx.ErrValidation, in.Action)
	}
	return in, nil
}

func callOutlets(ctx context.Context, in *GraphState, tools Tools, cfg ReplyConfig) {
	slots := in.Intent.Slots

	// a follow-up on a cached outlet needs no new lookup
	if slots.Followup != "" {
		if o, ok := resolverx.Resolve(slots.Query, in.Memory.LastOutlets()); ok {
			in.Reply = FormatFollowup(o, slots.Followup)
			return
		}
	}

	rec := tools.FindOutlets(ctx, slots.Query)
	in.ToolCalls = append(in.ToolCalls, rec)
	if !rec.Output.Success {
		in.Reply = apology(rec.Output, "I couldn't search for outlets.")
		return
	}

	resp, _ := rec.Output.Result.(contractx.OutletQueryResponse)
	if len(resp.Results) > 0 {
		in.FreshOutlets = resp.Results
	}

	if slots.Followup == "" {
		in.Reply = FormatOutlets(resp.Results, cfg)
		return
	}

	reference := slots.Reference
	if reference == "" {
		reference = slots.Query
	}
	if o, ok := resolverx.Resolve(reference, resp.Results); ok {
		in.Reply = FormatFollowup(o, slots.Followup)
		return
	}
	switch len(resp.Results) {
	case 0:
		in.Reply = FormatNotFound(reference)
	case 1:
		in.Reply = FormatFollowup(resp.Results[0], slots.Followup)
	default:
		in.Reply = FormatOutlets(resp.Results, cfg)
	}
}
