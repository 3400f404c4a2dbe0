package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"persona-agent/internal/config"
)

// ollamaClient uses the native Ollama chat API.
type ollamaClient struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

func newOllamaClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.Logger) (*ollamaClient, error) {
	// api.NewClient wants the server root, without the OpenAI-compatible /v1 suffix.
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse Ollama base URL %q: %w", baseURL, err)
	}
	return &ollamaClient{
		client: api.NewClient(parsedURL, httpClient),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	if err := checkPrompt(systemPrompt); err != nil {
		observeFailure(c.model, "error")
		return "", UsageInfo{}, err
	}

	messages := []api.Message{{Role: "system", Content: systemPrompt}}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}
	options := map[string]interface{}{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	startTime := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Ollama chat failed", zap.Duration("duration", duration), zap.Error(err))
		observeFailure(c.model, "error")
		return "", UsageInfo{}, fmt.Errorf("%w: %w", ErrAIGenerationFailed, err)
	}
	usage := UsageInfo{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	observeSuccess(c.model, duration, usage)
	c.logger.Info("Ollama chat received", zap.Duration("duration", duration), zap.Int("length", len(resp.Message.Content)))
	return resp.Message.Content, usage, nil
}
