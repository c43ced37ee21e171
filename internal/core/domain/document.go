package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a registry row keyed by the caller-supplied doc_id.
// Re-ingestion supersedes the stored chunks via delete-then-reinsert;
// there is no in-place update.
type Document struct {
	ID          string         `json:"doc_id"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	ChunkCount  int            `json:"chunk_count"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Page is one extracted unit of a document. PageNumber is 1-based and
// extractor-defined; formats without native pagination get a synthetic
// single page.
type Page struct {
	Text       string
	PageNumber int
}

// ChunkRecord is the unit of vector storage. Field arity must match the
// store schema exactly; a mismatch is a configuration error, not a
// runtime recoverable one.
type ChunkRecord struct {
	ID         string    `json:"id"`
	Vector     []float32 `json:"vector"`
	Text       string    `json:"text"`
	DocName    string    `json:"doc_name"`
	DocID      string    `json:"doc_id"`
	ChunkIndex int       `json:"chunk_index"`
	Page       int       `json:"page"`
}
