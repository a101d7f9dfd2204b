package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventPaymentSettled      = "payment.settled"
	EventPayoutSettled       = "payout.settled"
	EventNotificationCreated = "notification.created"
)

// OutboxEvent is written in the same database transaction as the state change it describes
// and relayed afterwards.
type OutboxEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EventType   string         `gorm:"size:100;not null;index" json:"event_type"`
	AggregateID uuid.UUID      `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	LastError   *string        `gorm:"type:text" json:"last_error,omitempty"`
	PublishedAt *time.Time     `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

type OutboxPayload struct {
	NotificationIDs []uuid.UUID    `json:"notification_ids"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// WebhookEvent keeps an audit copy of every authenticated processor callback.
type WebhookEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Provider        string         `gorm:"size:20;not null" json:"provider"`
	Event           string         `gorm:"size:100;not null;index" json:"event"`
	Reference       string         `gorm:"size:100;index" json:"reference"`
	Payload         datatypes.JSON `gorm:"not null" json:"payload"`
	ProcessingError *string        `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
