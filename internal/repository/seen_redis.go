package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-agent/shared/interfaces"
)

const seenKeyPrefix = "persona:seen:"

var _ interfaces.SeenStore = (*redisSeenStore)(nil)

type redisSeenStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSeenStore remembers handled source posts for ttl.
func NewRedisSeenStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.SeenStore {
	return &redisSeenStore{client: client, ttl: ttl, logger: logger.Named("SeenStore")}
}

// MarkSeen atomically claims sourceID and reports whether it was new.
func (s *redisSeenStore) MarkSeen(ctx context.Context, sourceID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, seenKeyPrefix+sourceID, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		s.logger.Error("Failed to mark source as seen", zap.String("source_id", sourceID), zap.Error(err))
		return false, fmt.Errorf("mark %s seen: %w", sourceID, err)
	}
	if !ok {
		s.logger.Debug("Source already seen", zap.String("source_id", sourceID))
	}
	return ok, nil
}

// Forget deletes the claim on sourceID. A missing key is not an error.
func (s *redisSeenStore) Forget(ctx context.Context, sourceID string) error {
	if err := s.client.Del(ctx, seenKeyPrefix+sourceID).Err(); err != nil {
		s.logger.Error("Failed to forget source", zap.String("source_id", sourceID), zap.Error(err))
		return fmt.Errorf("forget %s: %w", sourceID, err)
	}
	return nil
}
