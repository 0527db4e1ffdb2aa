package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/classify"
)

type ClassifyHandler struct {
	svc *classify.Service
}

func NewClassifyHandler(svc *classify.Service) *ClassifyHandler {
	return &ClassifyHandler{svc: svc}
}

func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", apperrors.ErrInvalidInput))
		return
	}

	res, err := h.svc.Classify(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
