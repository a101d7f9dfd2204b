package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one payment attempt for a booking.
type Transaction struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"booking_id"`
	ClientID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	WorkerID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"worker_id"`
	WorkerAmount       decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"worker_amount"`
	PlatformFee        decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"platform_fee"`
	PlatformFeePercent decimal.Decimal   `gorm:"type:numeric(6,4);not null" json:"platform_fee_percent"`
	TotalAmount        decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency           string            `gorm:"size:3;not null" json:"currency"`
	Status             TransactionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Reference          string            `gorm:"size:100;not null;unique" json:"reference"`
	AccessCode         *string           `gorm:"size:100" json:"access_code,omitempty"`
	AuthorizationURL   *string           `gorm:"type:text" json:"authorization_url,omitempty"`
	GatewayStatus      *string           `gorm:"size:50" json:"gateway_status,omitempty"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RevenueLedgerEntry records platform fee income, one row per completed transaction.
type RevenueLedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;unique" json:"transaction_id"`
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
}
