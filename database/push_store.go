package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushSubscriptionStore struct {
	db *gorm.DB
}

// Upsert keys on the endpoint; a browser re-subscribing moves the endpoint to the new user.
func (s *PushSubscriptionStore) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "user_agent"}),
	}).Create(sub).Error)
}

func (s *PushSubscriptionStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (s *PushSubscriptionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.PushSubscription{}, "id = ?", id).Error
}

// DeleteForUser removes one endpoint registered by the user.
func (s *PushSubscriptionStore) DeleteForUser(ctx context.Context, userID uuid.UUID, endpoint string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
