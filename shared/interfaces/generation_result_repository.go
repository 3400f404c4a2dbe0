package interfaces

import (
	"context"

	"persona-agent/shared/models"
)

// GenerationResultRepository stores the outcome of every generation task.
//
//go:generate mockery --name GenerationResultRepository --output ../../internal/mocks --outpkg mocks --case=underscore
type GenerationResultRepository interface {
	// GetByTaskID returns models.ErrNotFound if no result has the given task ID.
	GetByTaskID(ctx context.Context, taskID string) (*models.GenerationResult, error)

	// Save creates or updates the result keyed by its ID.
	Save(ctx context.Context, result *models.GenerationResult) error

	// ListRecent returns at most limit results, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.GenerationResult, error)
}

// SeenStore remembers which source posts were already handled.
type SeenStore interface {
	// MarkSeen records sourceID and reports whether this was the first time.
	MarkSeen(ctx context.Context, sourceID string) (bool, error)

	// Forget releases a claim made by MarkSeen so the source can be handled again.
	Forget(ctx context.Context, sourceID string) error
}
