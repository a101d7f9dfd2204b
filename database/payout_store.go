package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutStore struct {
	db *gorm.DB
}

func (s *PayoutStore) Create(ctx context.Context, p *models.WorkerPayout) error {
	return translate(s.db.WithContext(ctx).Omit("Worker").Create(p).Error)
}

func (s *PayoutStore) Get(ctx context.Context, id uuid.UUID) (*models.WorkerPayout, error) {
	var p models.WorkerPayout
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PayoutStore) GetByReference(ctx context.Context, reference string) (*models.WorkerPayout, error) {
	var p models.WorkerPayout
	if err := s.db.WithContext(ctx).First(&p, "reference = ?", reference).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PayoutStore) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.WorkerPayout, error) {
	var payouts []models.WorkerPayout
	err := s.db.WithContext(ctx).Where("worker_id = ?", workerID).Order("requested_at desc").Find(&payouts).Error
	return payouts, err
}

func (s *PayoutStore) ListAll(ctx context.Context, page, limit int, status string) ([]models.WorkerPayout, int64, error) {
	offset, size := Page(page, limit)
	q := s.db.WithContext(ctx).Model(&models.WorkerPayout{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payouts []models.WorkerPayout
	err := q.Order("requested_at desc").Offset(offset).Limit(size).Preload("Worker").Find(&payouts).Error
	return payouts, total, err
}

// ReservedTotal sums payouts that are pending or completed.
func (s *PayoutStore) ReservedTotal(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.WithContext(ctx).Model(&models.WorkerPayout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("worker_id = ? AND status IN ?", workerID, []models.PayoutStatus{models.PayoutPending, models.PayoutCompleted}).
		Row()
	err := row.Scan(&total)
	return total, err
}

// SetTransfer records the queued transfer on a payout that is still pending.
func (s *PayoutStore) SetTransfer(ctx context.Context, id uuid.UUID, transferCode, recipientCode string, approvedBy uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.WorkerPayout{}).
		Where("id = ? AND status = ?", id, models.PayoutPending).
		Updates(map[string]any{
			"transfer_code":  transferCode,
			"recipient_code": recipientCode,
			"approved_by":    approvedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PayoutStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.WorkerPayout{}).
		Where("id = ? AND status = ?", id, models.PayoutPending).
		Updates(map[string]any{"status": models.PayoutFailed, "failure_reason": reason, "processed_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
