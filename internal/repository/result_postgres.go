package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

var _ interfaces.GenerationResultRepository = (*postgresResultRepository)(nil)

type postgresResultRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresResultRepository creates a result repository backed by PostgreSQL.
func NewPostgresResultRepository(db *pgxpool.Pool, logger *zap.Logger) interfaces.GenerationResultRepository {
	return &postgresResultRepository{db: db, logger: logger.Named("ResultRepo")}
}

const resultColumns = `id, strategy, source_id, input, output, image_url, image_path, status,
	processing_time_ms, created_at, completed_at, error`

// Save inserts the result or overwrites the row with the same ID.
func (r *postgresResultRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	query := `
        INSERT INTO generation_results (` + resultColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO UPDATE SET
            strategy = EXCLUDED.strategy,
            source_id = EXCLUDED.source_id,
            input = EXCLUDED.input,
            output = EXCLUDED.output,
            image_url = EXCLUDED.image_url,
            image_path = EXCLUDED.image_path,
            status = EXCLUDED.status,
            processing_time_ms = EXCLUDED.processing_time_ms,
            completed_at = EXCLUDED.completed_at,
            error = EXCLUDED.error`

	_, err := r.db.Exec(ctx, query,
		result.ID,
		result.Strategy,
		result.SourceID,
		result.Input,
		result.Output,
		result.ImageURL,
		result.ImagePath,
		result.Status,
		result.ProcessingTimeMs,
		result.CreatedAt,
		result.CompletedAt,
		result.Error,
	)
	if err != nil {
		r.logger.Error("Failed to save generation result", zap.String("task_id", result.ID), zap.Error(err))
		return fmt.Errorf("save result %s: %w", result.ID, err)
	}
	r.logger.Debug("Generation result saved", zap.String("task_id", result.ID), zap.String("status", result.Status))
	return nil
}

// GetByTaskID returns models.ErrNotFound when no row matches.
func (r *postgresResultRepository) GetByTaskID(ctx context.Context, taskID string) (*models.GenerationResult, error) {
	query := `SELECT ` + resultColumns + ` FROM generation_results WHERE id = $1`

	var result models.GenerationResult
	if err := pgxscan.Get(ctx, r.db, &result, query, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("result %s: %w", taskID, models.ErrNotFound)
		}
		r.logger.Error("Failed to load generation result", zap.String("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("get result %s: %w", taskID, err)
	}
	return &result, nil
}

// ListRecent returns the newest results first. A non-positive limit uses the default.
func (r *postgresResultRepository) ListRecent(ctx context.Context, limit int) ([]*models.GenerationResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query := `SELECT ` + resultColumns + ` FROM generation_results ORDER BY created_at DESC, id DESC LIMIT $1`

	var results []*models.GenerationResult
	if err := pgxscan.Select(ctx, r.db, &results, query, limit); err != nil {
		r.logger.Error("Failed to list generation results", zap.Error(err))
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}
