package cache

import (
	"context"
	"time"
)

// Job states reported back to the submitter via the status endpoint.
// Ingestion failures never reach the original request (it already got a
// 202); this tracker is the out-of-band observation point.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobDone       = "done"
	JobFailed     = "failed"
	JobDeadLetter = "dead_letter"
)

type JobStatus struct {
	DocumentID string    `json:"document_id"`
	TenantID   string    `json:"tenant_id"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobTracker records ingestion job progress keyed by document id.
type JobTracker struct {
	cache *Cache
	ttl   time.Duration
}

func NewJobTracker(cache *Cache) *JobTracker {
	return &JobTracker{cache: cache, ttl: 24 * time.Hour}
}

func (t *JobTracker) Set(ctx context.Context, st JobStatus) error {
	st.UpdatedAt = time.Now().UTC()
	return t.cache.Set(ctx, t.key(st.DocumentID), st, t.ttl)
}

func (t *JobTracker) Get(ctx context.Context, documentID string) (*JobStatus, error) {
	var st JobStatus
	if err := t.cache.Get(ctx, t.key(documentID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (t *JobTracker) key(documentID string) string {
	return "ingest:job:" + documentID
}
