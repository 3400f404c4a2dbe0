package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"persona-agent/internal/config"
)

// geminiClient uses the Gemini API through google.golang.org/genai.
type geminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig, httpClient *http.Client, logger *zap.Logger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	// The OpenRouter default does not apply to Gemini; only an explicit Google endpoint does.
	if cfg.BaseURL != "" && cfg.BaseURL != defaultOpenRouterURL {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}
	model := cfg.Model
	if model == "" || model == defaultOpenRouterModel {
		model = defaultGeminiModel
	}
	return &geminiClient{client: client, model: model, logger: logger}, nil
}

const (
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "anthropic/claude-3-haiku"
	defaultGeminiModel     = "gemini-2.0-flash"
)

func (c *geminiClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	if err := checkPrompt(systemPrompt); err != nil {
		observeFailure(c.model, "error")
		return "", UsageInfo{}, err
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if params.Temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopP != nil {
		genCfg.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.MaxTokens != nil {
		genCfg.MaxOutputTokens = int32(*params.MaxTokens)
	}

	startTime := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userInput), genCfg)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Error("Gemini generation failed", zap.Duration("duration", duration), zap.Error(err))
		observeFailure(c.model, "error")
		return "", UsageInfo{}, fmt.Errorf("%w: %w", ErrAIGenerationFailed, err)
	}
	if len(resp.Candidates) == 0 {
		observeFailure(c.model, "error_no_candidates")
		return "", UsageInfo{}, fmt.Errorf("%w: no candidates in response", ErrAIGenerationFailed)
	}
	text := resp.Text()

	var usage UsageInfo
	if md := resp.UsageMetadata; md != nil {
		usage = UsageInfo{
			PromptTokens:     int(md.PromptTokenCount),
			CompletionTokens: int(md.CandidatesTokenCount),
			TotalTokens:      int(md.TotalTokenCount),
		}
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(c.model, systemPrompt, userInput, text)
	}
	observeSuccess(c.model, duration, usage)
	c.logger.Info("Gemini generation received", zap.Duration("duration", duration), zap.Int("length", len(text)))
	return text, usage, nil
}
