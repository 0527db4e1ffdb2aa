package queue

import "time"

const TypeDocumentProcess = "document:process"

// DocumentProcessPayload is the ingestion work item. The queue owns it until
// a worker claims it; delivery is at-least-once, so the consumer must be
// idempotent.
type DocumentProcessPayload struct {
	DocumentID string    `json:"document_id"`
	TenantID   string    `json:"tenant_id"`
	FilePath   string    `json:"file_path"`
	FileType   string    `json:"file_type"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
