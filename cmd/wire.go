package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	orchestrator "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	intentx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/intent"
	llmx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/llm"
	promptx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/prompt"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
	toolx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/tool"
	backendx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/backend"
	configx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/config"
	outletdbx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/outletdb"
)

type app struct {
	orchestrator *orchestrator.Orchestrator
	gateway      *toolx.Gateway
	closers      []func() error
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// wireApp is the composition root. Without a backend URL the calculator
// runs in-process; an outlet DSN takes precedence over the backend for
// outlet lookups.
func wireApp(ctx context.Context) (*app, error) {
	chatCfg, err := configx.New[orchestrator.Config]("CHAT")
	if err != nil {
		return nil, fmt.Errorf("load chat config: %w", err)
	}
	toolCfg, err := configx.New[toolx.Config]("TOOL")
	if err != nil {
		return nil, fmt.Errorf("load tool config: %w", err)
	}
	if err := toolCfg.Validate(); err != nil {
		return nil, err
	}
	llmCfg, err := configx.New[llmx.Config]("CLASSIFIER")
	if err != nil {
		return nil, fmt.Errorf("load classifier config: %w", err)
	}
	backendCfg, err := configx.New[backendx.Config]("BACKEND")
	if err != nil {
		return nil, fmt.Errorf("load backend config: %w", err)
	}
	outletCfg, err := configx.New[outletdbx.Config]("OUTLET_DB")
	if err != nil {
		return nil, fmt.Errorf("load outlet db config: %w", err)
	}

	a := &app{}

	var (
		calculator contractx.Calculator = toolx.LocalCalculator{}
		products   contractx.ProductSearcher
		outlets    contractx.OutletFinder
	)
	if backendCfg.Enabled() {
		client, err := backendx.NewClient(*backendCfg)
		if err != nil {
			return nil, fmt.Errorf("wire backend client: %w", err)
		}
		calculator, products, outlets = client, client, client
	}
	if outletCfg.Enabled() {
		finder, err := outletdbx.Open(outletCfg.FitNarrowingCap(chatCfg.NarrowingCap))
		if err != nil {
			return nil, fmt.Errorf("wire outlet db: %w", err)
		}
		a.closers = append(a.closers, finder.Close)
		outlets = finder
	}

	opts := []intentx.Option{}
	completer, err := llmx.NewCompleter(ctx, *llmCfg)
	if err != nil {
		return nil, fmt.Errorf("wire classifier backend: %w", err)
	}
	if completer != nil {
		opts = append(opts,
			intentx.WithCompleter(completer, promptx.LoadPromptSet().Classifier),
			intentx.WithExternalTimeout(llmCfg.Timeout),
		)
	}

	a.gateway = toolx.NewGateway(toolx.NewExecutor(*toolCfg), calculator, products, outlets)
	a.orchestrator, err = orchestrator.New(statex.NewStore(), intentx.New(opts...), a.gateway, *chatCfg)
	if err != nil {
		return nil, fmt.Errorf("wire orchestrator: %w", err)
	}

	log.Debug().
		Bool("backend", backendCfg.Enabled()).
		Bool("outlet_db", outletCfg.Enabled()).
		Str("classifier", string(llmCfg.Driver)).
		Msg("app wired")
	return a, nil
}
