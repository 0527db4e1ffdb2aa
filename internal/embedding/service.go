// Package embedding turns chunk text into fixed-dimension vectors. The
// dimension is a deployment constant; ingestion and query paths must share it.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/llm"
)

type Service struct {
	gateway    llm.Gateway
	model      string
	dimension  int
	batchSize  int
	maxRetries int
	timeout    time.Duration
}

func NewService(gw llm.Gateway, cfg config.EmbeddingConfig) *Service {
	return &Service{
		gateway:    gw,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
	}
}

// Dimension returns the deployment-wide vector dimension.
func (s *Service) Dimension() int { return s.dimension }

// Embed generates vectors for all texts, batching to respect API limits.
// Transient failures are retried with exponential backoff up to maxRetries
// per batch; exhaustion surfaces ErrEmbeddingUnavailable so the caller can
// nack for queue-level redelivery.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := s.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/s.batchSize, err)
		}
		all = append(all, vecs...)
	}

	return all, nil
}

// EmbedSingle embeds one text, used for query embedding.
func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", apperrors.ErrEmbeddingUnavailable)
	}
	return vecs[0], nil
}

func (s *Service) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying embedding batch", "attempt", attempt)
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.gateway.Embed(callCtx, llm.EmbeddingRequest{
			Model: s.model,
			Input: batch,
		})
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
				apperrors.ErrEmbeddingUnavailable, len(resp.Embeddings), len(batch))
		}
		for _, v := range resp.Embeddings {
			if len(v) != s.dimension {
				return nil, fmt.Errorf("%w: dimension %d, expected %d",
					apperrors.ErrEmbeddingUnavailable, len(v), s.dimension)
			}
		}
		return resp.Embeddings, nil
	}

	return nil, fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, lastErr)
}
