package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/document"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the error taxonomy onto HTTP statuses: caller errors are
// 400, missing documents 404, schema violations by the model 502, transient
// capability outages 503, everything else 500. The raw error text is
// returned; these are operator-facing APIs.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, document.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrClassificationParse):
		status = http.StatusBadGateway
	case errors.Is(err, apperrors.ErrEmbeddingUnavailable),
		errors.Is(err, apperrors.ErrGenerationUnavailable),
		errors.Is(err, apperrors.ErrDocumentUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
