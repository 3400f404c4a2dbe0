package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"persona-agent/shared/interfaces"
	sharedMessaging "persona-agent/shared/messaging"
)

var (
	_ interfaces.ResultPublisher = (*Publisher)(nil)
	_ interfaces.TaskPublisher   = (*Publisher)(nil)
)

// Publisher sends JSON messages to one durable queue through the default exchange.
type Publisher struct {
	ch        *amqp091.Channel
	queueName string
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewPublisher opens a channel on conn and declares queueName.
func NewPublisher(conn *amqp091.Connection, queueName string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	return &Publisher{
		ch:        ch,
		queueName: queueName,
		logger:    logger.Named("rabbitmq_publisher").With(zap.String("queue", queueName)),
	}, nil
}

// Publish marshals payload and sends it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, payload interface{}, correlationID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return errors.New("publisher channel is closed")
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			Body:          body,
			DeliveryMode:  amqp091.Persistent,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish message", zap.String("correlation_id", correlationID), zap.Error(err))
		return fmt.Errorf("publish message: %w", err)
	}
	p.logger.Debug("Message published", zap.String("correlation_id", correlationID), zap.Int("bytes", len(body)))
	return nil
}

// PublishResult sends a finished task result.
func (p *Publisher) PublishResult(ctx context.Context, payload sharedMessaging.GenerationResultPayload, correlationID string) error {
	return p.Publish(ctx, payload, correlationID)
}

// PublishTask enqueues a generation task, keyed by its TaskID.
func (p *Publisher) PublishTask(ctx context.Context, payload sharedMessaging.GenerationTaskPayload) error {
	return p.Publish(ctx, payload, payload.TaskID)
}

// Close closes the channel. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
