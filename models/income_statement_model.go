package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IncomeStatement struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_statement_worker_period" json:"worker_id"`
	Period           string          `gorm:"size:7;not null;uniqueIndex:ux_statement_worker_period" json:"period"`
	PeriodStart      time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd        time.Time       `gorm:"not null" json:"period_end"`
	TransactionCount int             `gorm:"not null" json:"transaction_count"`
	GrossEarnings    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"gross_earnings"`
	PlatformFees     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"platform_fees"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	VerificationHash string          `gorm:"size:64;not null" json:"verification_hash"`
	PDFURL           *string         `gorm:"type:text" json:"pdf_url,omitempty"`
	GeneratedAt      time.Time       `gorm:"not null" json:"generated_at"`
}
