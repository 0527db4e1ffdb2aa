package rag

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrag/docrag/internal/vectorstore"
)

func TestIdentityRerankerKeepsOrder(t *testing.T) {
	in := []vectorstore.SearchResult{
		{Content: "primeiro", Score: 0.9},
		{Content: "segundo", Score: 0.5},
	}
	out, err := NewIdentityReranker().Rerank(context.Background(), "pergunta", in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBM25RerankerPrefersLexicalOverlap(t *testing.T) {
	docID := uuid.New()
	in := []vectorstore.SearchResult{
		{DocumentID: docID, ChunkIndex: 0, Content: "politica de ferias e beneficios dos funcionarios", Score: 0.95},
		{DocumentID: docID, ChunkIndex: 1, Content: "faturamento trimestral e projecao de receita do trimestre", Score: 0.90},
		{DocumentID: docID, ChunkIndex: 2, Content: "ata da reuniao semanal de engenharia", Score: 0.85},
	}

	out, err := NewBM25Reranker().Rerank(context.Background(), "qual o faturamento do trimestre?", in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// the chunk sharing query terms moves to the front despite a lower
	// vector score
	assert.Equal(t, 1, out[0].ChunkIndex)
	assert.Greater(t, out[0].Score, out[1].Score)
}

func TestBM25RerankerEmptyInput(t *testing.T) {
	out, err := NewBM25Reranker().Rerank(context.Background(), "pergunta", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBM25RerankerNoOverlapKeepsStableOrder(t *testing.T) {
	in := []vectorstore.SearchResult{
		{ChunkIndex: 0, Content: "alpha beta gamma"},
		{ChunkIndex: 1, Content: "delta epsilon zeta"},
	}
	out, err := NewBM25Reranker().Rerank(context.Background(), "xyzzy", in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].ChunkIndex)
	assert.Equal(t, 1, out[1].ChunkIndex)
}
