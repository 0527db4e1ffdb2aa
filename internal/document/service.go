// Package document implements the ingestion coordinator: accept a file,
// persist the raw bytes, enqueue exactly one processing task, and return a
// handle before any embedding or vector-store work happens.
package document

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/models"
	"github.com/docrag/docrag/internal/queue"
	"github.com/docrag/docrag/internal/storage"
)

// Enqueuer is the slice of the queue client the coordinator needs.
type Enqueuer interface {
	EnqueueDocumentProcess(payload queue.DocumentProcessPayload) (string, error)
}

// JobRecorder records submission progress for the status endpoint.
type JobRecorder interface {
	Set(ctx context.Context, st cache.JobStatus) error
}

// ChunkDeleter removes a document's indexed chunks when the document goes away.
type ChunkDeleter interface {
	DeleteDocument(ctx context.Context, tenantID string, documentID uuid.UUID) error
}

type Service struct {
	store   Store
	storage storage.Storage
	bucket  string
	queue   Enqueuer
	jobs    JobRecorder
	chunks  ChunkDeleter
}

func NewService(store Store, objStore storage.Storage, bucket string, q Enqueuer, jobs JobRecorder, chunks ChunkDeleter) *Service {
	return &Service{
		store:   store,
		storage: objStore,
		bucket:  bucket,
		queue:   q,
		jobs:    jobs,
		chunks:  chunks,
	}
}

type SubmitRequest struct {
	TenantID string
	// DocumentID is optional. When supplied, a re-submission overwrites the
	// previous chunk set for that id; when empty a fresh id is assigned.
	DocumentID uuid.UUID
	Filename   string
	FileType   string
	FileSize   int64
	Data       io.Reader
}

// IngestJob is the handle returned to the submitter before processing runs.
type IngestJob struct {
	TaskID     string    `json:"task_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
}

// Submit validates the request, persists the raw bytes and the document
// row, and enqueues one processing task. It never calls the embedding or
// vector-store layers; that is the latency-decoupling boundary.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*IngestJob, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}
	if req.Data == nil || req.FileSize <= 0 {
		return nil, fmt.Errorf("%w: empty payload", apperrors.ErrInvalidInput)
	}
	if req.Filename == "" {
		return nil, fmt.Errorf("%w: filename required", apperrors.ErrInvalidInput)
	}

	docID := req.DocumentID
	if docID == uuid.Nil {
		docID = uuid.New()
	}

	fileType := req.FileType
	if fileType == "" {
		fileType = filepath.Ext(req.Filename)
	}

	path := fmt.Sprintf("%s/%s%s", req.TenantID, docID, filepath.Ext(req.Filename))
	if err := s.storage.Upload(ctx, s.bucket, path, req.Data, "application/octet-stream"); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &models.Document{
		ID:            docID,
		TenantID:      req.TenantID,
		Title:         req.Filename,
		FilePath:      path,
		FileType:      fileType,
		FileSizeBytes: req.FileSize,
		Status:        models.DocStatusPending,
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return nil, err
	}

	taskID, err := s.queue.EnqueueDocumentProcess(queue.DocumentProcessPayload{
		DocumentID: docID.String(),
		TenantID:   req.TenantID,
		FilePath:   path,
		FileType:   fileType,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue processing task: %w", err)
	}

	// status tracking is best-effort; the document row is authoritative
	_ = s.jobs.Set(ctx, cache.JobStatus{
		DocumentID: docID.String(),
		TenantID:   req.TenantID,
		Status:     cache.JobQueued,
	})

	return &IngestJob{
		TaskID:     taskID,
		DocumentID: docID,
		Filename:   req.Filename,
		Status:     cache.JobQueued,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Document, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}
	return s.store.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Document, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}
	return s.store.List(ctx, tenantID, limit, offset)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.store.UpdateStatus(ctx, id, status)
}

// Delete removes the document row, its indexed chunks, and the raw bytes.
// Chunk removal must succeed: a deleted document may never keep surfacing
// in answers.
func (s *Service) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}

	doc, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.chunks.DeleteDocument(ctx, tenantID, id); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	if doc.FilePath != "" {
		_ = s.storage.Delete(ctx, s.bucket, doc.FilePath)
	}
	return s.store.Delete(ctx, tenantID, id)
}
