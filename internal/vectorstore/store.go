// Package vectorstore persists chunk embeddings partitioned by tenant.
//
// Isolation invariant: every operation takes a tenant id and is physically
// scoped to that tenant's rows. There is no unscoped query path.
package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

type Chunk struct {
	DocumentID uuid.UUID
	TenantID   string
	ChunkIndex int
	Content    string
	StartChar  int
	EndChar    int
	Embedding  []float32
	TokenCount int
}

type SearchOptions struct {
	TenantID string
	TopK     int
}

type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	Score      float64   `json:"score"` // cosine similarity, higher is closer
}

type VectorStore interface {
	// Upsert replaces each document's chunk set: previous chunks of the
	// documents in the batch are removed, so redelivery and shorter
	// re-submissions never duplicate or strand stale indices. The write is
	// one transaction: readers see all chunks of a document or none.
	Upsert(ctx context.Context, chunks []Chunk) error

	// Search returns up to TopK candidates ordered by ascending vector
	// distance. A tenant with no data yields an empty slice, not an error.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)

	// CollectionExists reports whether the tenant has any stored chunks.
	CollectionExists(ctx context.Context, tenantID string) (bool, error)

	// DeleteDocument removes one document's chunks within the tenant.
	DeleteDocument(ctx context.Context, tenantID string, documentID uuid.UUID) error
}
