package ports

import (
	"context"
	"io"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, docID, title, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous ingestion of an
// uploaded document into the vector store.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, docID string) error
}

// QueryService is the inbound contract for retrieval-augmented answering.
type QueryService interface {
	Answer(ctx context.Context, query string, docIDs []string, topK int) (*domain.QueryResult, error)
}

// DocumentDeleter removes a document and all of its chunks.
type DocumentDeleter interface {
	Delete(ctx context.Context, docID string) (int, error)
}

// DocumentReader is the inbound read model for registry state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
