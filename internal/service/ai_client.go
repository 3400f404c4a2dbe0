package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"persona-agent/internal/config"
)

// Supported AI_CLIENT_TYPE values.
const (
	ClientTypeOpenAI    = "openai"
	ClientTypeOpenAISDK = "openai-sdk"
	ClientTypeOllama    = "ollama"
	ClientTypeGemini    = "gemini"
)

// ErrAIGenerationFailed wraps every backend failure. Empty text is not a
// failure at this layer and is returned as is.
var ErrAIGenerationFailed = errors.New("AI text generation failed")

// GenerationParams are optional sampling settings; nil means backend default.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// UsageInfo is the token accounting reported by the backend, or estimated
// locally when the backend reports none.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Estimated        bool
}

// AIClient is a chat-completion backend.
//
//go:generate mockery --name AIClient --output ../mocks --outpkg mocks --case=underscore
type AIClient interface {
	GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error)
}

// NewAIClient builds the backend selected by cfg.ClientType.
func NewAIClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (AIClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	log := logger.Named("ai_client").With(zap.String("client_type", cfg.ClientType), zap.String("model", cfg.Model))

	switch strings.ToLower(cfg.ClientType) {
	case ClientTypeOpenAI:
		log.Info("Using OpenAI-compatible client", zap.String("base_url", cfg.BaseURL))
		return newOpenAIClient(cfg, httpClient, log), nil
	case ClientTypeOpenAISDK:
		log.Info("Using official OpenAI SDK client", zap.String("base_url", cfg.BaseURL))
		return newOpenAISDKClient(cfg, httpClient, log), nil
	case ClientTypeOllama:
		log.Info("Using Ollama client", zap.String("base_url", cfg.BaseURL))
		return newOllamaClient(cfg, httpClient, log)
	case ClientTypeGemini:
		log.Info("Using Gemini client")
		return newGeminiClient(ctx, cfg, httpClient, log)
	default:
		return nil, fmt.Errorf("unknown AI client type %q", cfg.ClientType)
	}
}

func checkPrompt(systemPrompt string) error {
	if strings.TrimSpace(systemPrompt) == "" {
		return fmt.Errorf("%w: system prompt is empty", ErrAIGenerationFailed)
	}
	return nil
}

func float32Val(f *float64) float32 {
	if f == nil {
		return 0
	}
	return float32(*f)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
