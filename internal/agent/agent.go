// Package agent holds the persona's decision engine and text-generation
// strategies. It only depends on a Completer and never reads the environment.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/models"
)

const (
	// DefaultTemperature biases every completion toward varied phrasing.
	DefaultTemperature = 0.9
	// DefaultMaxTokens is large enough that a tweet-sized answer is never truncated.
	DefaultMaxTokens = 4096
)

// Persona is the immutable voice every generation call is made in.
type Persona struct {
	Name         string
	SystemPrompt string
	APIKey       string // provider credential, never logged
}

// Request is the per-call record handed to the Completer.
type Request struct {
	Strategy     models.Strategy
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Completer is the single text-generation capability the agent consumes.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts an ordinary function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f(ctx, req).
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Agent turns inputs into exactly one completion request per call.
// It is safe for concurrent use.
type Agent struct {
	persona   Persona
	completer Completer
	logger    *zap.Logger
}

// New creates an Agent. The persona prompt is required because it is the
// system context of every call.
func New(persona Persona, completer Completer, logger *zap.Logger) (*Agent, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if strings.TrimSpace(persona.SystemPrompt) == "" {
		return nil, fmt.Errorf("%w: persona system prompt is empty", models.ErrConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		persona:   persona,
		completer: completer,
		logger:    logger.Named("agent"),
	}, nil
}

// Persona returns the agent's persona.
func (a *Agent) Persona() Persona {
	return a.persona
}

// complete issues one completion request and wraps any failure in ErrCompletion.
func (a *Agent) complete(ctx context.Context, strategy models.Strategy, userPrompt string) (string, error) {
	req := Request{
		Strategy:     strategy,
		SystemPrompt: a.persona.SystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	}
	log := a.logger.With(zap.String("strategy", string(strategy)))
	log.Debug("Sending completion request", zap.Int("prompt_bytes", len(userPrompt)))

	text, err := a.completer.Complete(ctx, req)
	if err != nil {
		log.Error("Completion request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", models.ErrCompletion, strategy, err)
	}
	return text, nil
}

// generate is complete plus the trim-and-reject-empty normalization shared
// by the text strategies.
func (a *Agent) generate(ctx context.Context, strategy models.Strategy, userPrompt string) (string, error) {
	raw, err := a.complete(ctx, strategy, userPrompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		a.logger.Warn("Completion returned empty text", zap.String("strategy", string(strategy)))
		return "", fmt.Errorf("%w: %s: empty completion", models.ErrCompletion, strategy)
	}
	a.logger.Info("Content generated", zap.String("strategy", string(strategy)), zap.Int("length", len(text)))
	return text, nil
}

var _ interfaces.ContentGenerator = (*Agent)(nil)
