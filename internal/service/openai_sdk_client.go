package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"persona-agent/internal/config"
)

// openAISDKClient uses the official openai-go SDK.
type openAISDKClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

func newOpenAISDKClient(cfg config.AIConfig, httpClient *http.Client, logger *zap.Logger) *openAISDKClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAISDKClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *openAISDKClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	if err := checkPrompt(systemPrompt); err != nil {
		observeFailure(c.model, "error")
		return "", UsageInfo{}, err
	}

	msgs := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}
	if userInput != "" {
		msgs = append(msgs, openai.UserMessage(userInput))
	}
	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens != nil {
		req.MaxTokens = openai.Int(int64(*params.MaxTokens))
	}
	if params.TopP != nil {
		req.TopP = openai.Float(*params.TopP)
	}

	startTime := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, req)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Chat completion failed", zap.Duration("duration", duration), zap.Error(err))
		observeFailure(c.model, "error")
		return "", UsageInfo{}, fmt.Errorf("%w: %w", ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		observeFailure(c.model, "error_no_choices")
		return "", UsageInfo{}, fmt.Errorf("%w: no choices in response", ErrAIGenerationFailed)
	}

	text := resp.Choices[0].Message.Content
	usage := UsageInfo{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(c.model, systemPrompt, userInput, text)
	}
	observeSuccess(c.model, duration, usage)
	c.logger.Info("Chat completion received", zap.Duration("duration", duration), zap.Int("length", len(text)))
	return text, usage, nil
}
