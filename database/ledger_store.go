package database

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerStore struct {
	db *gorm.DB
}

type RevenueSummary struct {
	Entries int64           `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}

// Summary totals ledger entries created in [from, to). Zero times leave the bound open.
func (s *LedgerStore) Summary(ctx context.Context, from, to time.Time) (RevenueSummary, error) {
	q := s.db.WithContext(ctx).Model(&models.RevenueLedgerEntry{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var sum RevenueSummary
	err := q.Select("COUNT(*), COALESCE(SUM(amount), 0)").Row().Scan(&sum.Entries, &sum.Total)
	return sum, err
}

func (s *LedgerStore) List(ctx context.Context, page, limit int) ([]models.RevenueLedgerEntry, error) {
	offset, size := Page(page, limit)
	var entries []models.RevenueLedgerEntry
	err := s.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(size).Find(&entries).Error
	return entries, err
}

// Between returns every entry created in [from, to), oldest first.
func (s *LedgerStore) Between(ctx context.Context, from, to time.Time) ([]models.RevenueLedgerEntry, error) {
	var entries []models.RevenueLedgerEntry
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
