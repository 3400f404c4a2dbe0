package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"persona-agent/internal/config"
)

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Requeue returns the message to the queue for another attempt.
	Requeue
	// Reject drops the message; used for payloads that can never succeed.
	Reject
)

// DeliveryHandler processes one delivery.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, msg amqp091.Delivery) Outcome
}

// ErrConsumerClosed is returned by Run when the broker closes the delivery channel.
var ErrConsumerClosed = errors.New("consumer channel closed by broker")

// Consumer reads the task queue and hands each delivery to a DeliveryHandler.
type Consumer struct {
	conn    *amqp091.Connection
	cfg     config.RabbitMQConfig
	handler DeliveryHandler
	logger  *zap.Logger
}

// NewConsumer creates a Consumer for cfg.TaskQueue.
func NewConsumer(conn *amqp091.Connection, cfg config.RabbitMQConfig, handler DeliveryHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:    conn,
		cfg:     cfg,
		handler: handler,
		logger:  logger.Named("rabbitmq_consumer").With(zap.String("queue", cfg.TaskQueue.Name)),
	}
}

// Run consumes until ctx is canceled, returning nil in that case.
func (c *Consumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer ch.Close()

	q := c.cfg.TaskQueue
	declared, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, q.Exclusive, q.NoWait, nil)
	if err != nil {
		return fmt.Errorf("declare task queue %s: %w", q.Name, err)
	}
	c.logger.Info("Task queue declared", zap.Int("messages", declared.Messages), zap.Int("consumers", declared.Consumers))

	prefetch := c.cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		declared.Name,
		c.cfg.ConsumerName,
		false, // manual ack
		q.Exclusive,
		false,
		q.NoWait,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}
	c.logger.Info("Consumer started, waiting for messages")

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Consumer channel closed by RabbitMQ")
				return ErrConsumerClosed
			}
			c.settle(msg, c.handler.HandleDelivery(ctx, msg))
		case <-ctx.Done():
			c.logger.Info("Context canceled, stopping consumer")
			return nil
		}
	}
}

func (c *Consumer) settle(msg amqp091.Delivery, outcome Outcome) {
	var err error
	switch outcome {
	case Ack:
		err = msg.Ack(false)
	case Requeue:
		err = msg.Nack(false, true)
	default:
		err = msg.Nack(false, false)
	}
	if err != nil {
		c.logger.Error("Failed to settle message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Int("outcome", int(outcome)), zap.Error(err))
	}
}
