package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentStore struct {
	db *gorm.DB
}

func (s *DocumentStore) Create(ctx context.Context, d *models.VerificationDocument) error {
	return translate(s.db.WithContext(ctx).Create(d).Error)
}

func (s *DocumentStore) Get(ctx context.Context, id uuid.UUID) (*models.VerificationDocument, error) {
	var d models.VerificationDocument
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *DocumentStore) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.VerificationDocument, error) {
	var docs []models.VerificationDocument
	err := s.db.WithContext(ctx).Where("worker_id = ?", workerID).Order("created_at desc").Find(&docs).Error
	return docs, err
}

func (s *DocumentStore) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]models.VerificationDocument, error) {
	var docs []models.VerificationDocument
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc").Find(&docs).Error
	return docs, err
}

// Review decides a pending document. A document that was already decided yields ErrConflict.
func (s *DocumentStore) Review(ctx context.Context, id uuid.UUID, status models.DocumentStatus, reviewer uuid.UUID, notes *string, at time.Time) error {
	updates := map[string]any{"status": status, "reviewed_by": reviewer, "reviewed_at": at}
	if notes != nil {
		updates["reviewer_notes"] = *notes
	}
	res := s.db.WithContext(ctx).Model(&models.VerificationDocument{}).
		Where("id = ? AND status = ?", id, models.DocumentPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
