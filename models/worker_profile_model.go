package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WorkerProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"user_id"`
	Headline        *string         `gorm:"size:255" json:"headline"`
	Bio             *string         `gorm:"type:text" json:"bio"`
	Skills          string          `gorm:"type:text" json:"skills"`
	HourlyRate      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"hourly_rate"`
	Latitude        float64         `gorm:"index" json:"latitude"`
	Longitude       float64         `gorm:"index" json:"longitude"`
	ServiceRadiusKm float64         `gorm:"default:25" json:"service_radius_km"`
	Status          string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsVerified      bool            `gorm:"default:false" json:"is_verified"`
	AvgRating       float32         `gorm:"default:0" json:"avg_rating"`

	BankCode      *string `gorm:"size:20" json:"-"`
	AccountNumber *string `gorm:"size:30" json:"-"`
	AccountName   *string `gorm:"size:255" json:"-"`
	RecipientCode *string `gorm:"size:64" json:"-"`

	User      *User     `gorm:"foreignkey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

const WorkerApproved = "approved"

// HasSkill matches case-insensitively against the comma separated skill list.
func (w WorkerProfile) HasSkill(skill string) bool {
	skill = strings.TrimSpace(strings.ToLower(skill))
	if skill == "" {
		return true
	}
	for _, s := range strings.Split(w.Skills, ",") {
		if strings.TrimSpace(strings.ToLower(s)) == skill {
			return true
		}
	}
	return false
}

func (w WorkerProfile) HasBankAccount() bool {
	return w.BankCode != nil && w.AccountNumber != nil && *w.BankCode != "" && *w.AccountNumber != ""
}
