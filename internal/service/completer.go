package service

import (
	"context"

	"persona-agent/internal/agent"
)

// Completer adapts an AIClient to agent.Completer.
type Completer struct {
	client AIClient
}

// NewCompleter wraps client.
func NewCompleter(client AIClient) *Completer {
	return &Completer{client: client}
}

// Complete sends the request's prompts and sampling settings unchanged.
func (c *Completer) Complete(ctx context.Context, req agent.Request) (string, error) {
	temperature := req.Temperature
	maxTokens := req.MaxTokens
	text, _, err := c.client.GenerateText(ctx, req.SystemPrompt, req.UserPrompt, GenerationParams{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	return text, err
}

var _ agent.Completer = (*Completer)(nil)
