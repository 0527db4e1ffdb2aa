package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	opts := ChunkOptions{ChunkSize: 100, ChunkOverlap: 20}

	first := Chunk(text, opts)
	second := Chunk(text, opts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Start, second[i].Start)
		assert.Equal(t, first[i].End, second[i].End)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestChunkIndicesContiguous(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50)
	chunks := Chunk(text, ChunkOptions{ChunkSize: 100, ChunkOverlap: 25})

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkOverlap(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := Chunk(text, ChunkOptions{ChunkSize: 100, ChunkOverlap: 20})

	require.GreaterOrEqual(t, len(chunks), 2)
	// consecutive windows step by size-overlap
	assert.Equal(t, 80, chunks[1].Start-chunks[0].Start)
	assert.Equal(t, chunks[0].End-chunks[1].Start, 20)
}

func TestChunkShortText(t *testing.T) {
	chunks := Chunk("short", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkEmptyAndBlank(t *testing.T) {
	assert.Empty(t, Chunk("", DefaultOptions()))
	assert.Empty(t, Chunk("   \n\t  ", DefaultOptions()))
}

func TestChunkMultibyte(t *testing.T) {
	// rune-based windows must not split UTF-8 sequences
	text := strings.Repeat("ação é útil. ", 40)
	chunks := Chunk(text, ChunkOptions{ChunkSize: 50, ChunkOverlap: 10})

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, strings.Contains(text, c.Content))
	}
}
