package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WorkerPayout struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        PayoutStatus    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Reference     string          `gorm:"size:100;not null;unique" json:"reference"`
	TransferCode  *string         `gorm:"size:100" json:"transfer_code,omitempty"`
	RecipientCode *string         `gorm:"size:64" json:"-"`
	FailureReason *string         `gorm:"type:text" json:"failure_reason,omitempty"`
	ApprovedBy    *uuid.UUID      `gorm:"type:uuid" json:"approved_by,omitempty"`
	RequestedAt   time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`

	Worker *User `gorm:"foreignkey:WorkerID" json:"worker,omitempty"`
}
