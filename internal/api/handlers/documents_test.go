package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrag/docrag/internal/cache"
	"github.com/docrag/docrag/internal/document"
	"github.com/docrag/docrag/internal/models"
	"github.com/docrag/docrag/internal/queue"
)

type memStore struct {
	docs map[uuid.UUID]*models.Document
}

func (m *memStore) Insert(_ context.Context, doc *models.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memStore) GetByID(_ context.Context, tenantID string, id uuid.UUID) (*models.Document, error) {
	d, ok := m.docs[id]
	if !ok || d.TenantID != tenantID {
		return nil, document.ErrNotFound
	}
	return d, nil
}

func (m *memStore) List(_ context.Context, tenantID string, _, _ int) ([]models.Document, error) {
	var out []models.Document
	for _, d := range m.docs {
		if d.TenantID == tenantID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (m *memStore) Delete(_ context.Context, tenantID string, id uuid.UUID) error {
	delete(m.docs, id)
	return nil
}

type memStorage struct{}

func (memStorage) Upload(_ context.Context, _, _ string, data io.Reader, _ string) error {
	_, err := io.Copy(io.Discard, data)
	return err
}
func (memStorage) Download(_ context.Context, _, _ string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not used in tests")
}
func (memStorage) Delete(_ context.Context, _, _ string) error { return nil }

type memEnqueuer struct {
	payloads []queue.DocumentProcessPayload
}

func (m *memEnqueuer) EnqueueDocumentProcess(p queue.DocumentProcessPayload) (string, error) {
	m.payloads = append(m.payloads, p)
	return fmt.Sprintf("task-%d", len(m.payloads)), nil
}

type memJobs struct {
	statuses map[string]cache.JobStatus
}

func (m *memJobs) Set(_ context.Context, st cache.JobStatus) error {
	m.statuses[st.DocumentID] = st
	return nil
}

func (m *memJobs) Get(_ context.Context, documentID string) (*cache.JobStatus, error) {
	st, ok := m.statuses[documentID]
	if !ok {
		return nil, fmt.Errorf("status not found")
	}
	return &st, nil
}

type memChunks struct{}

func (memChunks) DeleteDocument(_ context.Context, _ string, _ uuid.UUID) error { return nil }

func newTestDocumentHandler() (*DocumentHandler, *memStore, *memEnqueuer, *memJobs) {
	store := &memStore{docs: map[uuid.UUID]*models.Document{}}
	enq := &memEnqueuer{}
	jobs := &memJobs{statuses: map[string]cache.JobStatus{}}
	svc := document.NewService(store, memStorage{}, "documents", enq, jobs, memChunks{})
	return NewDocumentHandler(svc, jobs), store, enq, jobs
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func multipartBody(t *testing.T, tenantID string, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tenant_id", tenantID))
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("conteudo do arquivo " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAccepted(t *testing.T) {
	h, store, enq, _ := newTestDocumentHandler()

	body, contentType := multipartBody(t, "usuario_teste_01", "relatorio.txt")
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "task-1")
	assert.Len(t, enq.payloads, 1)
	assert.Len(t, store.docs, 1)
}

func TestUploadMultipleFiles(t *testing.T) {
	h, store, enq, _ := newTestDocumentHandler()

	body, contentType := multipartBody(t, "usuario_teste_01", "a.txt", "b.txt", "c.txt")
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, enq.payloads, 3)
	assert.Len(t, store.docs, 3)
}

func TestUploadRequiresTenant(t *testing.T) {
	h, _, enq, _ := newTestDocumentHandler()

	body, contentType := multipartBody(t, "", "a.txt")
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, enq.payloads)
}

func TestUploadRequiresFile(t *testing.T) {
	h, _, _, _ := newTestDocumentHandler()

	body, contentType := multipartBody(t, "usuario_teste_01")
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFallsBackToDocumentRow(t *testing.T) {
	h, store, _, _ := newTestDocumentHandler()
	docID := uuid.New()
	store.docs[docID] = &models.Document{ID: docID, TenantID: "t1", Status: models.DocStatusReady}

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID.String()+"/status?tenant_id=t1", nil)
	req = withURLParam(req, "id", docID.String())
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.DocStatusReady)
}

func TestStatusIsTenantScoped(t *testing.T) {
	h, store, _, jobs := newTestDocumentHandler()
	docID := uuid.New()
	store.docs[docID] = &models.Document{ID: docID, TenantID: "t1", Status: models.DocStatusReady}
	jobs.statuses[docID.String()] = cache.JobStatus{DocumentID: docID.String(), TenantID: "t1", Status: cache.JobDone}

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID.String()+"/status?tenant_id=outro", nil)
	req = withURLParam(req, "id", docID.String())
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
