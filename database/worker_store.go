package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkerStore struct {
	db *gorm.DB
}

func (s *WorkerStore) Get(ctx context.Context, userID uuid.UUID) (*models.WorkerProfile, error) {
	var w models.WorkerProfile
	if err := s.db.WithContext(ctx).Preload("User").First(&w, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *WorkerStore) Save(ctx context.Context, w *models.WorkerProfile) error {
	return translate(s.db.WithContext(ctx).Omit("User").Save(w).Error)
}

// SearchInBox returns approved workers of active users inside the lat/lng box.
func (s *WorkerStore) SearchInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.WorkerProfile, error) {
	var workers []models.WorkerProfile
	err := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = worker_profiles.user_id AND users.is_active = ?", true).
		Where("worker_profiles.status = ?", models.WorkerApproved).
		Where("worker_profiles.latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("worker_profiles.longitude BETWEEN ? AND ?", minLng, maxLng).
		Find(&workers).Error
	return workers, err
}

func (s *WorkerStore) SetBankAccount(ctx context.Context, workerID uuid.UUID, bankCode, accountNumber, accountName string) error {
	res := s.db.WithContext(ctx).Model(&models.WorkerProfile{}).Where("user_id = ?", workerID).Updates(map[string]any{
		"bank_code":      bankCode,
		"account_number": accountNumber,
		"account_name":   accountName,
		"recipient_code": nil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *WorkerStore) SetRecipientCode(ctx context.Context, workerID uuid.UUID, code string) error {
	return s.db.WithContext(ctx).Model(&models.WorkerProfile{}).Where("user_id = ?", workerID).Update("recipient_code", code).Error
}

func (s *WorkerStore) SetVerified(ctx context.Context, workerID uuid.UUID, verified bool) error {
	updates := map[string]any{"is_verified": verified}
	if verified {
		updates["status"] = models.WorkerApproved
	}
	return s.db.WithContext(ctx).Model(&models.WorkerProfile{}).Where("user_id = ?", workerID).Updates(updates).Error
}
