// Package rag implements the retrieval-augmented answering pipeline: index
// extracted text into the tenant's vector partition, then answer questions
// from the nearest chunks with an optional lexical rerank in between.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/vectorstore"
	"github.com/docrag/docrag/pkg/chunker"
	"github.com/docrag/docrag/pkg/tokenizer"
)

// Pipeline is the surface the worker and the query handler share.
type Pipeline interface {
	// Ingest chunks and embeds extracted text and upserts the result into
	// the tenant's partition. Reprocessing the same document overwrites its
	// chunk set instead of duplicating it.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Answer retrieves the tenant's nearest chunks and generates a grounded
	// answer. A tenant with no matching content gets a fixed fallback answer
	// without a model call.
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)
}

type IngestRequest struct {
	TenantID   string
	DocumentID uuid.UUID
	Text       string
}

type IngestResult struct {
	ChunkCount int
	TokenCount int
}

type AnswerRequest struct {
	TenantID string
	Question string
	// TopK overrides the configured candidate count when positive.
	TopK int
	// Rerank applies lexical re-scoring to the vector candidates.
	Rerank bool
}

type UsedChunk struct {
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Score      float64   `json:"score"`
}

type AnswerResponse struct {
	Answer     string      `json:"answer"`
	UsedChunks []UsedChunk `json:"used_chunks"`
	Model      string      `json:"model,omitempty"`
	Tokens     int         `json:"tokens,omitempty"`
	LatencyMs  int64       `json:"latency_ms"`
}

type pipeline struct {
	store     vectorstore.VectorStore
	embedder  Embedder
	retriever *Retriever
	generator *Generator
	reranker  Reranker
	ingest    config.IngestConfig
	retrieval config.RetrievalConfig
	logger    *slog.Logger
}

func NewPipeline(
	store vectorstore.VectorStore,
	embedder Embedder,
	generator *Generator,
	reranker Reranker,
	ingest config.IngestConfig,
	retrieval config.RetrievalConfig,
	logger *slog.Logger,
) Pipeline {
	if reranker == nil {
		reranker = NewIdentityReranker()
	}
	return &pipeline{
		store:     store,
		embedder:  embedder,
		retriever: NewRetriever(store, embedder),
		generator: generator,
		reranker:  reranker,
		ingest:    ingest,
		retrieval: retrieval,
		logger:    logger,
	}
}

func (p *pipeline) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}
	if req.DocumentID == uuid.Nil {
		return nil, fmt.Errorf("%w: document id required", apperrors.ErrInvalidInput)
	}

	start := time.Now()
	textChunks := chunker.Chunk(req.Text, chunker.ChunkOptions{
		ChunkSize:    p.ingest.ChunkSize,
		ChunkOverlap: p.ingest.ChunkOverlap,
	})
	if len(textChunks) == 0 {
		return nil, fmt.Errorf("%w: document has no extractable text", apperrors.ErrInvalidInput)
	}

	texts := make([]string, len(textChunks))
	for i, c := range textChunks {
		texts[i] = c.Content
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(textChunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(vectors), len(textChunks))
	}

	rows := make([]vectorstore.Chunk, len(textChunks))
	totalTokens := 0
	for i, c := range textChunks {
		tokens := tokenizer.CountTokens(c.Content)
		totalTokens += tokens
		rows[i] = vectorstore.Chunk{
			DocumentID: req.DocumentID,
			TenantID:   req.TenantID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			StartChar:  c.Start,
			EndChar:    c.End,
			Embedding:  vectors[i],
			TokenCount: tokens,
		}
	}

	if err := p.store.Upsert(ctx, rows); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}

	p.logger.Info("document indexed",
		"tenant_id", req.TenantID,
		"document_id", req.DocumentID,
		"chunks", len(rows),
		"tokens", totalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &IngestResult{ChunkCount: len(rows), TokenCount: totalTokens}, nil
}

func (p *pipeline) Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", apperrors.ErrInvalidInput)
	}
	if req.Question == "" {
		return nil, fmt.Errorf("%w: question required", apperrors.ErrInvalidInput)
	}

	start := time.Now()
	topK := req.TopK
	if topK <= 0 {
		topK = p.retrieval.TopK
	}

	candidates, err := p.retriever.Retrieve(ctx, req.Question, RetrieveOptions{
		TenantID: req.TenantID,
		TopK:     topK,
	})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		p.logger.Info("no indexed content for question",
			"tenant_id", req.TenantID,
		)
		return &AnswerResponse{
			Answer:     NoInformationAnswer,
			UsedChunks: []UsedChunk{},
			LatencyMs:  time.Since(start).Milliseconds(),
		}, nil
	}

	if req.Rerank {
		candidates, err = p.reranker.Rerank(ctx, req.Question, candidates)
		if err != nil {
			return nil, fmt.Errorf("rerank candidates: %w", err)
		}
	} else {
		// without a rerank signal the context reads in document order
		sortByDocumentOrder(candidates)
	}

	resp, included, err := p.generator.Generate(ctx, req.Question, candidates)
	if err != nil {
		return nil, err
	}

	used := make([]UsedChunk, len(included))
	for i, c := range included {
		used[i] = UsedChunk{
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Score:      c.Score,
		}
	}

	return &AnswerResponse{
		Answer:     resp.Content,
		UsedChunks: used,
		Model:      resp.Model,
		Tokens:     resp.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func sortByDocumentOrder(results []vectorstore.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DocumentID != results[j].DocumentID {
			return results[i].DocumentID.String() < results[j].DocumentID.String()
		}
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
}
