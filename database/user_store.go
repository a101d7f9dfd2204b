package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

// Create inserts the user and, for workers, an empty pending profile.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if u.Role == models.RoleWorker {
			return tx.Create(&models.WorkerProfile{UserID: u.ID, Status: "pending"}).Error
		}
		return nil
	}))
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, page, limit int, role string) ([]models.User, int64, error) {
	offset, size := Page(page, limit)
	q := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at desc").Offset(offset).Limit(size).Find(&users).Error
	return users, total, err
}

func (s *UserStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
