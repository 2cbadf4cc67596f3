// Package llm builds the optional completion backend of the intent
// classifier.
package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/openrouter"
)

type completionInput struct {
	System string
	User   string
}

// EinoCompleter runs messages -> chat model -> content as an eino graph.
type EinoCompleter struct {
	runner compose.Runnable[completionInput, string]
}

var _ contractx.Completer = (*EinoCompleter)(nil)

func NewEinoCompleter(ctx context.Context, chatModel einomodel.BaseChatModel) (*EinoCompleter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrValidation)
	}
	runner, err := compileCompletionGraph(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	return &EinoCompleter{runner: runner}, nil
}

func (c *EinoCompleter) Complete(ctx context.Context, system string, user string) (string, error) {
	out, err := c.runner.Invoke(ctx, completionInput{System: system, User: user})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

// The system prompt carries literal JSON braces, so messages are built in a
// lambda instead of an f-string chat template.
func compileCompletionGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[completionInput, string], error) {
	graph := compose.NewGraph[completionInput, string]()

	if err := graph.AddLambdaNode("messages",
		compose.InvokableLambda(func(ctx context.Context, in completionInput) ([]*schema.Message, error) {
			msgs := make([]*schema.Message, 0, 2)
			if in.System != "" {
				msgs = append(msgs, schema.SystemMessage(in.System))
			}
			return append(msgs, schema.UserMessage(in.User)), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion messages node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add completion model node: %w", err)
	}
	if err := graph.AddLambdaNode("content",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			if msg == nil {
				return "", fmt.Errorf("%w: model returned no message", contractx.ErrSchemaViolation)
			}
			return msg.Content, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion content node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "messages"},
		{"messages", "model"},
		{"model", "content"},
		{"content", compose.END},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add completion edge %s->%s: %w", e[0], e[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("classifier.completion_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile completion graph: %w", err)
	}
	return runner, nil
}

// NewCompleter returns the backend selected by cfg.Driver, or nil for the
// "none" driver.
func NewCompleter(ctx context.Context, cfg Config) (contractx.Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.driver() {
	case DriverEino:
		chatModel, err := cfg.OpenRouter().ChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		log.Info().Str("driver", string(DriverEino)).Str("model", cfg.Model).Msg("classifier backend enabled")
		return NewEinoCompleter(ctx, chatModel)
	case DriverOpenAI:
		orCfg := cfg.OpenRouter()
		c, err := openrouterx.NewChatCompleter(openrouterx.NewClient(orCfg), orCfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", string(DriverOpenAI)).Str("model", cfg.Model).Msg("classifier backend enabled")
		return c, nil
	default:
		return nil, nil
	}
}
