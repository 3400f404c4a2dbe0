// Package messaging carries generation tasks and results over RabbitMQ.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultDialAttempts = 5
	defaultDialDelay    = 5 * time.Second
)

// Dial connects to url, retrying up to defaultDialAttempts times.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*amqp091.Connection, error) {
	return dialWithRetry(ctx, url, defaultDialAttempts, defaultDialDelay, logger)
}

func dialWithRetry(ctx context.Context, url string, attempts int, delay time.Duration, logger *zap.Logger) (*amqp091.Connection, error) {
	if url == "" {
		return nil, fmt.Errorf("RabbitMQ URL is empty")
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			logger.Info("RabbitMQ connected", zap.Int("attempt", attempt))
			return conn, nil
		}
		lastErr = err
		logger.Warn("Failed to connect to RabbitMQ", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}
