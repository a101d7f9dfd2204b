package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	WorkerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	Status         BookingStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ScheduledStart time.Time       `gorm:"not null" json:"scheduled_start"`
	ScheduledEnd   time.Time       `gorm:"not null" json:"scheduled_end"`
	Address        string          `gorm:"type:text;not null" json:"address"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CancelReason   *string         `gorm:"type:text" json:"cancel_reason,omitempty"`

	Client *User `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Worker *User `gorm:"foreignkey:WorkerID" json:"worker,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Participant reports whether the user is the client or the worker on this booking.
func (b Booking) Participant(userID uuid.UUID) bool {
	return b.ClientID == userID || b.WorkerID == userID
}

// Counterpart returns the other party of the booking.
func (b Booking) Counterpart(userID uuid.UUID) uuid.UUID {
	if b.ClientID == userID {
		return b.WorkerID
	}
	return b.ClientID
}
