// Package workers hosts the asynq task handlers. Delivery is at-least-once:
// every handler must tolerate redelivery of a task it already completed.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/document"
	"github.com/docrag/docrag/internal/models"
	"github.com/docrag/docrag/internal/queue"
	"github.com/docrag/docrag/internal/rag"
	"github.com/docrag/docrag/internal/storage"
)

// StatusUpdater is the slice of the document service the worker needs.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// JobRecorder mirrors progress to the status endpoint.
type JobRecorder interface {
	Set(ctx context.Context, st cache.JobStatus) error
}

type DocumentWorker struct {
	docs      StatusUpdater
	storage   storage.Storage
	bucket    string
	extractor document.TextExtractor
	pipeline  rag.Pipeline
	jobs      JobRecorder
	logger    *slog.Logger
}

func NewDocumentWorker(
	docs StatusUpdater,
	store storage.Storage,
	bucket string,
	pipeline rag.Pipeline,
	jobs JobRecorder,
	logger *slog.Logger,
) *DocumentWorker {
	return &DocumentWorker{
		docs:      docs,
		storage:   store,
		bucket:    bucket,
		extractor: document.NewTextExtractor(),
		pipeline:  pipeline,
		jobs:      jobs,
		logger:    logger,
	}
}

// ProcessTask downloads the raw bytes, extracts text, and runs the indexing
// pipeline. Transient failures return a plain error so asynq redelivers;
// permanent ones are wrapped in asynq.SkipRetry and the document is marked
// failed immediately.
func (w *DocumentWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document id %q: %v: %w", payload.DocumentID, err, asynq.SkipRetry)
	}

	taskID, _ := asynq.GetTaskID(ctx)
	retried, rok := asynq.GetRetryCount(ctx)
	maxRetry, mok := asynq.GetMaxRetry(ctx)
	log := w.logger.With(
		"task_id", taskID,
		"document_id", docID,
		"tenant_id", payload.TenantID,
		"retried", retried,
	)
	log.Info("processing document")

	lastAttempt := rok && mok && retried >= maxRetry

	if err := w.docs.UpdateStatus(ctx, docID, models.DocStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}
	w.recordJob(ctx, payload, cache.JobProcessing, "")

	reader, err := w.storage.Download(ctx, w.bucket, payload.FilePath)
	if err != nil {
		// storage hiccups are retryable until the attempt budget runs out
		err = fmt.Errorf("%w: download %s: %v", apperrors.ErrDocumentUnavailable, payload.FilePath, err)
		return w.fail(ctx, payload, docID, log, err, lastAttempt)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		err = fmt.Errorf("%w: read %s: %v", apperrors.ErrDocumentUnavailable, payload.FilePath, err)
		return w.fail(ctx, payload, docID, log, err, lastAttempt)
	}

	extracted, err := w.extractor.Extract(ctx, document.ReaderAtFromBytes(data), int64(len(data)), payload.FileType)
	if err != nil {
		return w.fail(ctx, payload, docID, log, err, lastAttempt)
	}

	result, err := w.pipeline.Ingest(ctx, rag.IngestRequest{
		TenantID:   payload.TenantID,
		DocumentID: docID,
		Text:       extracted.Content,
	})
	if err != nil {
		return w.fail(ctx, payload, docID, log, err, lastAttempt)
	}

	if err := w.docs.UpdateStatus(ctx, docID, models.DocStatusReady); err != nil {
		return fmt.Errorf("update status to ready: %w", err)
	}
	w.recordJob(ctx, payload, cache.JobDone, "")

	log.Info("document indexed", "chunks", result.ChunkCount, "tokens", result.TokenCount)
	return nil
}

// fail marks the document failed when the error is permanent or the retry
// budget is spent, and shapes the returned error so asynq either redelivers
// or archives the task.
func (w *DocumentWorker) fail(ctx context.Context, payload queue.DocumentProcessPayload, docID uuid.UUID, log *slog.Logger, err error, lastAttempt bool) error {
	if apperrors.Permanent(err) {
		log.Warn("permanent ingestion failure", "error", err)
		if uerr := w.docs.UpdateStatus(ctx, docID, models.DocStatusFailed); uerr != nil {
			log.Error("mark document failed", "error", uerr)
		}
		w.recordJob(ctx, payload, cache.JobFailed, err.Error())
		if errors.Is(err, asynq.SkipRetry) {
			return err
		}
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if lastAttempt {
		log.Error("retries exhausted, task will be archived", "error", err)
		if uerr := w.docs.UpdateStatus(ctx, docID, models.DocStatusFailed); uerr != nil {
			log.Error("mark document failed", "error", uerr)
		}
		w.recordJob(ctx, payload, cache.JobDeadLetter, err.Error())
		return err
	}

	log.Warn("transient ingestion failure, will retry", "error", err)
	return err
}

func (w *DocumentWorker) recordJob(ctx context.Context, payload queue.DocumentProcessPayload, status, detail string) {
	// status tracking is best-effort; the document row is authoritative
	_ = w.jobs.Set(ctx, cache.JobStatus{
		DocumentID: payload.DocumentID,
		TenantID:   payload.TenantID,
		Status:     status,
		Detail:     detail,
	})
}
