package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifPaymentReceived      NotificationType = "payment_received"
	NotifPaymentConfirmed     NotificationType = "payment_confirmed"
	NotifPayoutCompleted      NotificationType = "payout_completed"
	NotifBookingRequested     NotificationType = "booking_requested"
	NotifBookingUpdated       NotificationType = "booking_updated"
	NotifBookingReminder      NotificationType = "booking_reminder"
	NotifVerificationApproved NotificationType = "verification_approved"
	NotifVerificationRejected NotificationType = "verification_rejected"
	NotifNewReview            NotificationType = "new_review"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"size:50;not null" json:"type"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	URL       *string          `gorm:"size:255" json:"url,omitempty"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	Data      datatypes.JSON   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type PushSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint  string    `gorm:"type:text;not null;uniqueIndex" json:"endpoint"`
	P256dh    string    `gorm:"type:text;not null" json:"-"`
	Auth      string    `gorm:"type:text;not null" json:"-"`
	UserAgent *string   `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
