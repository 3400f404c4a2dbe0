package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"persona-agent/internal/config"
)

// openAIClient talks to any OpenAI-compatible chat endpoint (OpenRouter by default).
type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func newOpenAIClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.Logger) *openAIClient {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = httpClient
	return &openAIClient{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	if err := checkPrompt(systemPrompt); err != nil {
		observeFailure(c.model, "error")
		return "", UsageInfo{}, err
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser, Content: userInput})
	}

	startTime := time.Now()
	c.logger.Debug("Sending chat completion",
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_input_bytes", len(userInput)),
	)
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Chat completion failed", zap.Duration("duration", duration), zap.Error(err))
		observeFailure(c.model, "error")
		return "", UsageInfo{}, fmt.Errorf("%w: %w", ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("Chat completion returned no choices", zap.Duration("duration", duration))
		observeFailure(c.model, "error_no_choices")
		return "", UsageInfo{}, fmt.Errorf("%w: no choices in response", ErrAIGenerationFailed)
	}

	text := resp.Choices[0].Message.Content
	usage := UsageInfo{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(c.model, systemPrompt, userInput, text)
	}
	observeSuccess(c.model, duration, usage)
	c.logger.Info("Chat completion received",
		zap.Duration("duration", duration),
		zap.Int("length", len(text)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return text, usage, nil
}
