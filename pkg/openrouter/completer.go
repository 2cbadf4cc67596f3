package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
)

// ChatCompleter sends one system+user exchange through the raw SDK client
// and returns the first choice's text.
type ChatCompleter struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

func NewChatCompleter(client *openaisdk.Client, cfg Config) (*ChatCompleter, error) {
	if client == nil {
		return nil, errors.New("openrouter: client is nil")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, errors.New("openrouter: model is required")
	}
	return &ChatCompleter{
		client:      client,
		model:       modelName,
		temperature: float64(cfg.Temperature),
		maxTokens:   int64(cfg.MaxCompletionToken),
	}, nil
}

func (c *ChatCompleter) Complete(ctx context.Context, system string, user string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		Temperature: openaisdk.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter: completion has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
