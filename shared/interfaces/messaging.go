package interfaces

import (
	"context"

	"persona-agent/shared/messaging"
)

// ResultPublisher sends finished task results to the result queue.
type ResultPublisher interface {
	PublishResult(ctx context.Context, payload messaging.GenerationResultPayload, correlationID string) error
}

// TaskPublisher enqueues generation tasks for the worker.
type TaskPublisher interface {
	PublishTask(ctx context.Context, payload messaging.GenerationTaskPayload) error
}
