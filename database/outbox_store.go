package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxStore struct {
	db *gorm.DB
}

// ListUnpublished returns the oldest undelivered events that have not exhausted their attempts.
func (s *OutboxStore) ListUnpublished(ctx context.Context, maxAttempts, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := s.db.WithContext(ctx).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at asc").Limit(limit).
		Find(&events).Error
	return events, err
}

func (s *OutboxStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{"published_at": at, "last_error": nil}).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{"attempts": gorm.Expr("attempts + 1"), "last_error": reason}).Error
}
