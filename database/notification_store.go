package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStore struct {
	db *gorm.DB
}

// CreateWithEvent stores the notifications and a notification.created outbox event so the
// relay delivers them after commit.
func (s *NotificationStore) CreateWithEvent(ctx context.Context, notifs []models.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := insertNotifications(tx, notifs)
		if err != nil {
			return err
		}
		return insertOutbox(tx, models.EventNotificationCreated, ids[0], ids, nil)
	}))
}

func (s *NotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	offset, size := Page(page, limit)
	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var notifs []models.Notification
	err := q.Order("created_at desc").Offset(offset).Limit(size).Find(&notifs).Error
	return notifs, total, err
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

// MarkRead returns ErrNotFound when the notification does not belong to the user.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var notifs []models.Notification
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&notifs).Error
	return notifs, err
}
