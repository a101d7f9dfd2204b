package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewStore struct {
	db *gorm.DB
}

// CreateAndRate inserts the review and recomputes the worker's average rating.
func (s *ReviewStore) CreateAndRate(ctx context.Context, r *models.Review) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		var result struct{ Avg float64 }
		if err := tx.Model(&models.Review{}).Where("worker_id = ?", r.WorkerID).
			Select("COALESCE(AVG(rating), 0) as avg").Scan(&result).Error; err != nil {
			return err
		}
		return tx.Model(&models.WorkerProfile{}).Where("user_id = ?", r.WorkerID).Update("avg_rating", result.Avg).Error
	}))
}

func (s *ReviewStore) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Where("worker_id = ?", workerID).Order("created_at desc").Find(&reviews).Error
	return reviews, err
}
