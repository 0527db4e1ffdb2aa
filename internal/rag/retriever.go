package rag

import (
	"context"
	"fmt"

	"github.com/docrag/docrag/internal/vectorstore"
)

// Embedder is the slice of the embedding service the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

type Retriever struct {
	store    vectorstore.VectorStore
	embedder Embedder
}

func NewRetriever(store vectorstore.VectorStore, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

type RetrieveOptions struct {
	TenantID string
	TopK     int
}

// Retrieve embeds the question with the same capability and dimension used
// at ingestion and returns the tenant's nearest chunks. An empty or missing
// collection yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, question string, opts RetrieveOptions) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	return r.store.Search(ctx, queryVec, vectorstore.SearchOptions{
		TenantID: opts.TenantID,
		TopK:     opts.TopK,
	})
}
