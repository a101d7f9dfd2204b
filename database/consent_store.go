package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsentStore struct {
	db *gorm.DB
}

func (s *ConsentStore) Create(ctx context.Context, c *models.ConsentRecord) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *ConsentStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ConsentRecord, error) {
	var records []models.ConsentRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("granted_at desc").Find(&records).Error
	return records, err
}

// RevokeActive stamps every unrevoked record of the type and reports how many changed.
func (s *ConsentStore) RevokeActive(ctx context.Context, userID uuid.UUID, consentType string, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ConsentRecord{}).
		Where("user_id = ? AND consent_type = ? AND revoked_at IS NULL", userID, consentType).
		Update("revoked_at", at)
	return res.RowsAffected, res.Error
}

// Active returns the newest record of the type that is neither revoked nor expired.
func (s *ConsentStore) Active(ctx context.Context, userID uuid.UUID, consentType string, now time.Time) (*models.ConsentRecord, error) {
	var c models.ConsentRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND consent_type = ? AND revoked_at IS NULL", userID, consentType).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("granted_at desc").
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// UsersWithActive lists the distinct users holding an active consent of the type.
func (s *ConsentStore) UsersWithActive(ctx context.Context, consentType string, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.ConsentRecord{}).
		Distinct("user_id").
		Where("consent_type = ? AND revoked_at IS NULL", consentType).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Pluck("user_id", &ids).Error
	return ids, err
}
