package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the persisted record of a submitted file. TenantID is the
// opaque caller-supplied isolation key; it is never parsed or normalized.
type Document struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      string    `json:"tenant_id" db:"tenant_id"`
	Title         string    `json:"title" db:"title"`
	FilePath      string    `json:"file_path,omitempty" db:"file_path"`
	FileType      string    `json:"file_type,omitempty" db:"file_type"`
	FileSizeBytes int64     `json:"file_size_bytes,omitempty" db:"file_size_bytes"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)
