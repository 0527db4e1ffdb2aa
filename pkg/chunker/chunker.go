// Package chunker splits extracted text into fixed-size overlapping spans.
// Chunking is deterministic: the same input and options always produce the
// same boundaries, which is what makes queue redelivery idempotent.
package chunker

import "strings"

type ChunkOptions struct {
	ChunkSize    int // target chunk size in runes
	ChunkOverlap int // overlap between consecutive chunks in runes
}

type TextChunk struct {
	Content string
	Index   int // 0-based, contiguous per document
	Start   int // rune offset in the source text
	End     int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Chunk slices text into fixed windows of opts.ChunkSize runes stepping by
// ChunkSize-ChunkOverlap. Whitespace-only windows are dropped; indices stay
// contiguous over the kept chunks.
func Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}

	runes := []rune(text)
	step := opts.ChunkSize - opts.ChunkOverlap

	var chunks []TextChunk
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + opts.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, TextChunk{
				Content: content,
				Index:   idx,
				Start:   start,
				End:     end,
			})
			idx++
		}

		if end == len(runes) {
			break
		}
	}

	return chunks
}
