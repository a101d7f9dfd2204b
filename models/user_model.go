package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleClient = "client"
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'client'" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
