package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Clear each document's previous chunk set first so a shorter
	// re-submission cannot leave stale higher-index chunks behind.
	type docKey struct {
		tenantID   string
		documentID uuid.UUID
	}
	cleared := make(map[docKey]struct{})
	for _, c := range chunks {
		key := docKey{c.TenantID, c.DocumentID}
		if _, done := cleared[key]; done {
			continue
		}
		cleared[key] = struct{}{}
		_, err := tx.Exec(ctx,
			"DELETE FROM document_chunks WHERE tenant_id = $1 AND document_id = $2",
			c.TenantID, c.DocumentID,
		)
		if err != nil {
			return fmt.Errorf("clear chunks of %s: %w", c.DocumentID, err)
		}
	}

	for _, c := range chunks {
		embedding := pgvector.NewVector(c.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, tenant_id, chunk_index, content, start_char, end_char, embedding, token_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (document_id, chunk_index)
			 DO UPDATE SET content = $5, start_char = $6, end_char = $7, embedding = $8, token_count = $9`,
			uuid.New(), c.DocumentID, c.TenantID, c.ChunkIndex, c.Content, c.StartChar, c.EndChar, embedding, c.TokenCount,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d of %s: %w", c.ChunkIndex, c.DocumentID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, content, chunk_index,
		        1 - (embedding <=> $1) AS score
		 FROM document_chunks
		 WHERE tenant_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		embedding, opts.TenantID, opts.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &r.ChunkIndex, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) CollectionExists(ctx context.Context, tenantID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM document_chunks WHERE tenant_id = $1)",
		tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return exists, nil
}

func (s *PgVectorStore) DeleteDocument(ctx context.Context, tenantID string, documentID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM document_chunks WHERE tenant_id = $1 AND document_id = $2",
		tenantID, documentID,
	)
	return err
}
