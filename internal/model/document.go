package model

import "time"

// DocumentStatus tracks where a document is in the extraction pipeline.
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentProcessed  DocumentStatus = "processed"
	DocumentFailed     DocumentStatus = "failed"
)

// Document represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID               string         `json:"id"`
	WorkspaceID      string         `json:"workspace_id,omitempty"`
	OwnerID          string         `json:"owner_id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	StoragePath      string         `json:"storage_path"`
	Size             int64          `json:"size"`
	ContentType      string         `json:"content_type"`
	Checksum         string         `json:"checksum"`
	Status           DocumentStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
