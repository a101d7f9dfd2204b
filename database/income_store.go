package database

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncomeStatementStore struct {
	db *gorm.DB
}

func (s *IncomeStatementStore) FindByPeriod(ctx context.Context, workerID uuid.UUID, period string) (*models.IncomeStatement, error) {
	var st models.IncomeStatement
	if err := s.db.WithContext(ctx).First(&st, "worker_id = ? AND period = ?", workerID, period).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// Save inserts a new statement or overwrites the one already stored for its period.
func (s *IncomeStatementStore) Save(ctx context.Context, st *models.IncomeStatement) error {
	return translate(s.db.WithContext(ctx).Save(st).Error)
}

func (s *IncomeStatementStore) Get(ctx context.Context, id uuid.UUID) (*models.IncomeStatement, error) {
	var st models.IncomeStatement
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *IncomeStatementStore) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.IncomeStatement, error) {
	var statements []models.IncomeStatement
	err := s.db.WithContext(ctx).Where("worker_id = ?", workerID).Order("period desc").Find(&statements).Error
	return statements, err
}

func (s *IncomeStatementStore) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	return s.db.WithContext(ctx).Model(&models.IncomeStatement{}).Where("id = ?", id).Update("pdf_url", url).Error
}
