// Package app assembles the components shared by the worker, the API server
// and the CLI from a loaded config.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/internal/config"
	"persona-agent/internal/imagejob"
	"persona-agent/internal/persona"
	"persona-agent/internal/service"
)

// NewAgent loads the persona and wraps the configured completion backend.
func NewAgent(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*agent.Agent, error) {
	p, err := persona.FromConfig(cfg.Persona, cfg.AI.APIKey)
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}
	client, err := service.NewAIClient(ctx, cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("create AI client: %w", err)
	}
	a, err := agent.New(p, service.NewCompleter(client), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Persona agent ready",
		zap.String("persona", p.Name),
		zap.String("ai_client", cfg.AI.ClientType),
		zap.String("model", cfg.AI.Model),
	)
	return a, nil
}

// NewImageService builds the image job service. Missing credentials are
// reported by Submit, not here.
func NewImageService(cfg *config.Config, logger *zap.Logger) *imagejob.Service {
	return imagejob.NewService(imagejob.Config{
		Endpoint:   cfg.ImageJob.Endpoint,
		APIKey:     cfg.ImageJob.APIKey,
		BasePrompt: cfg.ImageJob.BasePrompt,
	}, nil, logger)
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}
