package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

const (
	ToolCalculator = "calculator"
	ToolProducts   = "products"
	ToolOutlets    = "outlets"
)

// Gateway binds the three external tools to an Executor. A nil
// collaborator makes its tool report itself unavailable.
type Gateway struct {
	exec       *Executor
	calculator contractx.Calculator
	products   contractx.ProductSearcher
	outlets    contractx.OutletFinder
}

func NewGateway(
	exec *Executor,
	calculator contractx.Calculator,
	products contractx.ProductSearcher,
	outlets contractx.OutletFinder,
) *Gateway {
	return &Gateway{
		exec:       exec,
		calculator: calculator,
		products:   products,
		outlets:    outlets,
	}
}

// Calculate reports the numeric result on success. A calculator that
// answers with an error string yields success=false without tripping the
// circuit.
func (g *Gateway) Calculate(ctx context.Context, expression string) contractx.ToolCallRecord {
	input := map[string]any{"expression": expression}
	if g.calculator == nil {
		return unavailable(ToolCalculator, input)
	}

	rec := g.exec.Call(ctx, ToolCalculator, input, func(ctx context.Context) (any, error) {
		return g.calculator.Calculate(ctx, contractx.CalculatorRequest{Expression: expression})
	})
	if !rec.Output.Success {
		return rec
	}

	resp, _ := rec.Output.Result.(contractx.CalculatorResponse)
	if resp.Result == nil {
		msg := resp.Error
		if msg == "" {
			msg = "Calculation failed"
		}
		rec.Output = contractx.ToolOutput{Error: msg}
		return rec
	}
	rec.Output.Result = *resp.Result
	return rec
}

// SearchProducts leaves a contract.ProductSearchResponse in the output.
func (g *Gateway) SearchProducts(ctx context.Context, query string, topK int) contractx.ToolCallRecord {
	input := map[string]any{"query": query, "topK": topK}
	if g.products == nil {
		return unavailable(ToolProducts, input)
	}

	return g.exec.Call(ctx, ToolProducts, input, func(ctx context.Context) (any, error) {
		return g.products.SearchProducts(ctx, contractx.ProductSearchRequest{Query: query, TopK: topK})
	})
}

// FindOutlets leaves a contract.OutletQueryResponse in the output.
func (g *Gateway) FindOutlets(ctx context.Context, query string) contractx.ToolCallRecord {
	input := map[string]any{"naturalLanguageQuery": query}
	if g.outlets == nil {
		return unavailable(ToolOutlets, input)
	}

	return g.exec.Call(ctx, ToolOutlets, input, func(ctx context.Context) (any, error) {
		return g.outlets.FindOutlets(ctx, contractx.OutletQueryRequest{NaturalLanguageQuery: query})
	})
}

func (g *Gateway) BreakerState(tool string) BreakerState {
	return g.exec.BreakerState(tool)
}

func unavailable(tool string, input map[string]any) contractx.ToolCallRecord {
	return contractx.ToolCallRecord{
		Tool:   tool,
		Input:  input,
		Output: contractx.ToolOutput{
			Error: fmt.Sprintf("%s is not configured", tool),
			Cause: contractx.ErrToolFailure,
		},
	}
}
