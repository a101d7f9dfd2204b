package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookEventStore struct {
	db *gorm.DB
}

func (s *WebhookEventStore) Record(ctx context.Context, e *models.WebhookEvent) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *WebhookEventStore) SetError(ctx context.Context, id uuid.UUID, reason string) error {
	return s.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Update("processing_error", reason).Error
}
