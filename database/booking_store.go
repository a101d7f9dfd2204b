package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStore struct {
	db *gorm.DB
}

func (s *BookingStore) Create(ctx context.Context, b *models.Booking) error {
	return translate(s.db.WithContext(ctx).Omit("Client", "Worker").Create(b).Error)
}

func (s *BookingStore) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.WithContext(ctx).Preload("Client").Preload("Worker").First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *BookingStore) ListForUser(ctx context.Context, userID uuid.UUID, role string, status models.BookingStatus) ([]models.Booking, error) {
	column := "client_id"
	if role == models.RoleWorker {
		column = "worker_id"
	}
	q := s.db.WithContext(ctx).Where(column+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bookings []models.Booking
	err := q.Order("scheduled_start desc").Preload("Client").Preload("Worker").Find(&bookings).Error
	return bookings, err
}

// UpdateStatus only applies when the row is still in status from.
func (s *BookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus, reason *string) error {
	updates := map[string]any{"status": to}
	if reason != nil {
		updates["cancel_reason"] = *reason
	}
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *BookingStore) ListAll(ctx context.Context, page, limit int, status string) ([]models.Booking, int64, error) {
	offset, size := Page(page, limit)
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []models.Booking
	err := q.Order("created_at desc").Offset(offset).Limit(size).Preload("Client").Preload("Worker").Find(&bookings).Error
	return bookings, total, err
}

func (s *BookingStore) ListStartingBetween(ctx context.Context, status models.BookingStatus, from, to time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_start >= ? AND scheduled_start < ?", status, from, to).
		Find(&bookings).Error
	return bookings, err
}
