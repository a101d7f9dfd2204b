package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;unique" json:"booking_id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null" json:"client_id"`
	WorkerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"worker_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
