package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/rag"
	"github.com/docrag/docrag/internal/tenant"
)

type fakePipeline struct {
	lastAnswer rag.AnswerRequest
	answer     *rag.AnswerResponse
	answerErr  error
}

func (f *fakePipeline) Ingest(_ context.Context, _ rag.IngestRequest) (*rag.IngestResult, error) {
	return nil, fmt.Errorf("not used in tests")
}

func (f *fakePipeline) Answer(_ context.Context, req rag.AnswerRequest) (*rag.AnswerResponse, error) {
	f.lastAnswer = req
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.answer, nil
}

func TestQueryReturnsAnswer(t *testing.T) {
	pipe := &fakePipeline{answer: &rag.AnswerResponse{Answer: "resposta fundamentada"}}
	h := NewRAGHandler(pipe)

	req := httptest.NewRequest(http.MethodPost, "/rag/query",
		strings.NewReader(`{"tenant_id":"t1","question":"qual o prazo?"}`))
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resposta fundamentada")
	assert.Equal(t, "t1", pipe.lastAnswer.TenantID)
	assert.Equal(t, "qual o prazo?", pipe.lastAnswer.Question)
}

func TestQueryInvalidBody(t *testing.T) {
	h := NewRAGHandler(&fakePipeline{})

	req := httptest.NewRequest(http.MethodPost, "/rag/query", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryMapsErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: question required", apperrors.ErrInvalidInput), http.StatusBadRequest},
		{"generation down", fmt.Errorf("%w: upstream 529", apperrors.ErrGenerationUnavailable), http.StatusServiceUnavailable},
		{"embedding down", fmt.Errorf("%w: upstream 503", apperrors.ErrEmbeddingUnavailable), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRAGHandler(&fakePipeline{answerErr: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/rag/query",
				strings.NewReader(`{"tenant_id":"t1","question":"pergunta"}`))
			rec := httptest.NewRecorder()
			h.Query(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestQueryAuthenticatedTenantWinsOverBody(t *testing.T) {
	pipe := &fakePipeline{answer: &rag.AnswerResponse{Answer: "ok"}}
	h := NewRAGHandler(pipe)

	req := httptest.NewRequest(http.MethodPost, "/rag/query",
		strings.NewReader(`{"tenant_id":"tenant_do_corpo","question":"pergunta"}`))
	req = req.WithContext(tenant.WithID(req.Context(), "tenant_do_token"))
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant_do_token", pipe.lastAnswer.TenantID)
}
