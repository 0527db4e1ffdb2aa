package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docrag/docrag/internal/apperrors"
	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/document"
	"github.com/docrag/docrag/internal/tenant"
)

const maxUploadBytes = 32 << 20

// JobStatusGetter reads ingestion progress for the status endpoint.
type JobStatusGetter interface {
	Get(ctx context.Context, documentID string) (*cache.JobStatus, error)
}

type DocumentHandler struct {
	svc  *document.Service
	jobs JobStatusGetter
}

func NewDocumentHandler(svc *document.Service, jobs JobStatusGetter) *DocumentHandler {
	return &DocumentHandler{svc: svc, jobs: jobs}
}

// Upload accepts one or more files in a multipart form and answers 202 with
// a job handle per file. Processing happens asynchronously; the response
// never waits for extraction or embedding.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart form", apperrors.ErrInvalidInput))
		return
	}

	tenantID := resolveTenant(r, r.FormValue("tenant_id"))
	if tenantID == "" {
		writeError(w, fmt.Errorf("%w: tenant_id required", apperrors.ErrInvalidInput))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		// single-file clients use the "file" field
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		writeError(w, fmt.Errorf("%w: at least one file required", apperrors.ErrInvalidInput))
		return
	}

	var docID uuid.UUID
	if raw := r.FormValue("document_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid document_id", apperrors.ErrInvalidInput))
			return
		}
		if len(files) > 1 {
			writeError(w, fmt.Errorf("%w: document_id only applies to single-file uploads", apperrors.ErrInvalidInput))
			return
		}
		docID = parsed
	}

	jobs := make([]*document.IngestJob, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			writeError(w, fmt.Errorf("%w: open uploaded file %s", apperrors.ErrInvalidInput, header.Filename))
			return
		}

		job, err := h.svc.Submit(r.Context(), document.SubmitRequest{
			TenantID:   tenantID,
			DocumentID: docID,
			Filename:   header.Filename,
			FileType:   filepath.Ext(header.Filename),
			FileSize:   header.Size,
			Data:       f,
		})
		f.Close()
		if err != nil {
			writeError(w, err)
			return
		}
		jobs = append(jobs, job)
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{"jobs": jobs, "count": len(jobs)})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := resolveTenant(r, r.URL.Query().Get("tenant_id"))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	docs, err := h.svc.List(r.Context(), tenantID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := resolveTenant(r, r.URL.Query().Get("tenant_id"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid document id", apperrors.ErrInvalidInput))
		return
	}

	doc, err := h.svc.GetByID(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := resolveTenant(r, r.URL.Query().Get("tenant_id"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid document id", apperrors.ErrInvalidInput))
		return
	}

	if err := h.svc.Delete(r.Context(), tenantID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status reports ingestion progress. The job tracker gives the live view;
// when its entry expired the document row answers instead.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenantID := resolveTenant(r, r.URL.Query().Get("tenant_id"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid document id", apperrors.ErrInvalidInput))
		return
	}

	if st, err := h.jobs.Get(r.Context(), id.String()); err == nil && st.TenantID == tenantID {
		writeJSON(w, http.StatusOK, st)
		return
	}

	doc, err := h.svc.GetByID(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"document_id": doc.ID.String(), "status": doc.Status})
}

// resolveTenant prefers the authenticated identity over the caller-asserted
// field, so a valid token cannot be used to read another tenant's data.
func resolveTenant(r *http.Request, asserted string) string {
	if id := tenant.IDFromContext(r.Context()); id != "" {
		return id
	}
	return asserted
}
