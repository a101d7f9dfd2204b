package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConsentIncomeDataSharing = "income_data_sharing"
	ConsentMarketing         = "marketing"
)

// ConsentRecord is append-only; revocation sets RevokedAt.
type ConsentRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_consent_user_type" json:"user_id"`
	ConsentType string     `gorm:"size:50;not null;index:idx_consent_user_type" json:"consent_type"`
	PartnerName *string    `gorm:"size:255" json:"partner_name,omitempty"`
	GrantedAt   time.Time  `gorm:"not null" json:"granted_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`

	// Active is computed when records are listed.
	Active bool `gorm:"-" json:"active"`
}

func (c ConsentRecord) ActiveAt(now time.Time) bool {
	if c.RevokedAt != nil {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}
