package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionStore struct {
	db *gorm.DB
}

// Create returns ErrConflict when the booking already has an active transaction.
func (s *TransactionStore) Create(ctx context.Context, t *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *TransactionStore) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).First(&t, "reference = ?", reference).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *TransactionStore) HasActiveForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("booking_id = ? AND status IN ?", bookingID, models.ActiveTransactionStatuses).
		Count(&count).Error
	return count > 0, err
}

// MarkFailed flips a pending or processing transaction to failed. It reports false when
// the row had already left those states.
func (s *TransactionStore) MarkFailed(ctx context.Context, reference, gatewayStatus string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("reference = ? AND status IN ?", reference, []models.TransactionStatus{models.TransactionPending, models.TransactionProcessing}).
		Updates(map[string]any{"status": models.TransactionFailed, "gateway_status": gatewayStatus})
	return res.RowsAffected > 0, res.Error
}

func (s *TransactionStore) ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.TransactionPending, before).
		Order("created_at asc").Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (s *TransactionStore) ListAll(ctx context.Context, page, limit int, status string) ([]models.Transaction, int64, error) {
	offset, size := Page(page, limit)
	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txns []models.Transaction
	err := q.Order("created_at desc").Offset(offset).Limit(size).Find(&txns).Error
	return txns, total, err
}

type EarningsTotals struct {
	Count        int
	Gross        decimal.Decimal
	PlatformFees decimal.Decimal
}

// CompletedTotals aggregates a worker's completed transactions paid in [from, to).
func (s *TransactionStore) CompletedTotals(ctx context.Context, workerID uuid.UUID, from, to time.Time) (EarningsTotals, error) {
	var totals EarningsTotals
	row := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COUNT(*), COALESCE(SUM(worker_amount), 0), COALESCE(SUM(platform_fee), 0)").
		Where("worker_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?", workerID, models.TransactionCompleted, from, to).
		Row()
	err := row.Scan(&totals.Count, &totals.Gross, &totals.PlatformFees)
	return totals, err
}

// LifetimeEarnings sums worker_amount over every completed transaction.
func (s *TransactionStore) LifetimeEarnings(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(worker_amount), 0)").
		Where("worker_id = ? AND status = ?", workerID, models.TransactionCompleted).
		Row()
	err := row.Scan(&total)
	return total, err
}
