package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/config"
	"github.com/docrag/docrag/internal/llm"
	"github.com/docrag/docrag/internal/vectorstore"
	"github.com/docrag/docrag/pkg/tokenizer"
)

// NoInformationAnswer is returned verbatim when a tenant has no indexed
// content matching the question. It is produced without calling the model.
const NoInformationAnswer = "Não há informações disponíveis nos documentos para responder a essa pergunta."

const answerSystemPrompt = `You are an assistant that answers questions strictly from the provided document excerpts.
Rules:
- Answer only with information contained in the excerpts below.
- If the excerpts do not contain the answer, say you do not have that information.
- Answer in the same language as the question.
- Be concise and cite nothing outside the excerpts.`

// Generator assembles the grounded prompt and calls the chat gateway.
type Generator struct {
	gateway   llm.Gateway
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewGenerator(gateway llm.Gateway, cfg config.LLMConfig, retrieval config.RetrievalConfig) *Generator {
	return &Generator{
		gateway:   gateway,
		model:     cfg.ChatModel,
		maxTokens: retrieval.MaxContextTokens,
		timeout:   cfg.Timeout,
	}
}

// Generate builds a context block from the chunks, bounded by the token
// budget, and asks the model for a grounded answer. Chunks are included in
// the order given; callers decide the ordering policy. The second return
// value is the subset of chunks that fit the budget.
func (g *Generator) Generate(ctx context.Context, question string, chunks []vectorstore.SearchResult) (*llm.ChatResponse, []vectorstore.SearchResult, error) {
	contextBlock, included := g.buildContext(chunks)

	prompt := fmt.Sprintf("Document excerpts:\n\n%s\n\nQuestion: %s", contextBlock, question)

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.gateway.Chat(callCtx, llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrGenerationUnavailable, err)
	}

	return resp, included, nil
}

// buildContext concatenates chunk texts as numbered excerpts until the token
// budget is exhausted. At least one chunk is always included so a single
// oversized chunk cannot produce an empty context.
func (g *Generator) buildContext(chunks []vectorstore.SearchResult) (string, []vectorstore.SearchResult) {
	var b strings.Builder
	var included []vectorstore.SearchResult
	spent := 0

	for _, c := range chunks {
		cost := tokenizer.CountTokens(c.Content)
		if len(included) > 0 && g.maxTokens > 0 && spent+cost > g.maxTokens {
			break
		}
		fmt.Fprintf(&b, "[%d] %s\n\n", len(included)+1, c.Content)
		included = append(included, c)
		spent += cost
	}
	return strings.TrimRight(b.String(), "\n"), included
}
