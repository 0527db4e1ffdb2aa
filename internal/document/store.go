package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docrag/docrag/internal/models"
)

// ErrNotFound is returned when a document does not exist within the
// caller's tenant. A document belonging to another tenant is
// indistinguishable from one that was never submitted.
var ErrNotFound = errors.New("document not found")

// Store persists document metadata rows.
type Store interface {
	Insert(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
}

type pgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Insert(ctx context.Context, doc *models.Document) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, tenant_id, title, file_path, file_type, file_size_bytes, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (id) DO UPDATE
		 SET title = $3, file_path = $4, file_type = $5, file_size_bytes = $6, status = $7`,
		doc.ID, doc.TenantID, doc.Title, doc.FilePath, doc.FileType, doc.FileSizeBytes, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *pgStore) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, title, file_path, file_type, file_size_bytes, status, created_at
		 FROM documents WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&doc.ID, &doc.TenantID, &doc.Title, &doc.FilePath, &doc.FileType, &doc.FileSizeBytes, &doc.Status, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (s *pgStore) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, title, file_path, file_type, file_size_bytes, status, created_at
		 FROM documents WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Title, &d.FilePath, &d.FileType, &d.FileSizeBytes, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *pgStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, "UPDATE documents SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *pgStore) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1 AND tenant_id = $2", id, tenantID)
	return err
}
