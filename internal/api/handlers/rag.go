package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/rag"
)

type RAGHandler struct {
	pipeline rag.Pipeline
}

func NewRAGHandler(p rag.Pipeline) *RAGHandler {
	return &RAGHandler{pipeline: p}
}

type queryRequest struct {
	TenantID string `json:"tenant_id"`
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	Rerank   bool   `json:"rerank,omitempty"`
}

func (h *RAGHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", apperrors.ErrInvalidInput))
		return
	}

	tenantID := resolveTenant(r, req.TenantID)

	resp, err := h.pipeline.Answer(r.Context(), rag.AnswerRequest{
		TenantID: tenantID,
		Question: req.Question,
		TopK:     req.TopK,
		Rerank:   req.Rerank,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
