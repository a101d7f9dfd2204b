package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocIDDocument     = "id_document"
	DocProofOfAddress = "proof_of_address"
	DocCertificate    = "certificate"
)

type VerificationDocument struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"worker_id"`
	DocType       string         `gorm:"size:50;not null" json:"doc_type"`
	URL           string         `gorm:"type:text;not null" json:"url"`
	Status        DocumentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerNotes *string        `gorm:"type:text" json:"reviewer_notes,omitempty"`
	ReviewedBy    *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
