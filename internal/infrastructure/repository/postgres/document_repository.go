package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// DocumentRepository tracks ingestion lifecycle per doc_id. Chunk bodies
// and vectors live only in the vector store; this table holds registry
// state (uploaded/processing/ready/failed, chunk count, error message).
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Upsert replaces the row for a doc_id: re-uploading a document resets its
// lifecycle to the new state.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	doc_id, title, filename, mime_type, storage_path, status, chunk_count, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (doc_id) DO UPDATE SET
	title = EXCLUDED.title,
	filename = EXCLUDED.filename,
	mime_type = EXCLUDED.mime_type,
	storage_path = EXCLUDED.storage_path,
	status = EXCLUDED.status,
	chunk_count = EXCLUDED.chunk_count,
	error_message = EXCLUDED.error_message,
	updated_at = EXCLUDED.updated_at
`,
		doc.ID, doc.Title, doc.Filename, doc.MimeType, doc.StoragePath,
		string(doc.Status), doc.ChunkCount, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT doc_id, title, filename, mime_type, storage_path, status, chunk_count, error_message, created_at, updated_at
FROM documents
WHERE doc_id = $1
`, id)

	var doc domain.Document
	var status string
	var errMessage sql.NullString

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Filename, &doc.MimeType, &doc.StoragePath,
		&status, &doc.ChunkCount, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("doc_id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	doc.Error = errMessage.String
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.DocumentStatus,
	chunkCount int,
	errMessage string,
) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, chunk_count = $3, error_message = $4, updated_at = $5
WHERE doc_id = $1
`, id, string(status), chunkCount, errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("doc_id=%s", id))
	}
	return nil
}

// Delete removes the registry row. Deleting an unknown doc_id is a no-op:
// the vector-store delete is the authoritative one.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
