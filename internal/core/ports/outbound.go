package ports

import (
	"context"
	"io"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// DocumentRepository persists and reads registry state.
type DocumentRepository interface {
	Upsert(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, chunkCount int, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, docID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor turns a stored document into an ordered page sequence.
// Entries with blank text are filtered out by the implementation.
type PageExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.Page, error)
}

// Chunker turns raw page text into an ordered chunk sequence. The two
// implementations (section-based and semantic) are alternatives selected by
// configuration, never composed in one run.
type Chunker interface {
	Chunk(ctx context.Context, pageText string) ([]string, error)
}

// Embedder builds fixed-dimension, L2-normalized vectors. Order is
// preserved: vectors[i] corresponds to texts[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunk records and performs filtered similarity search.
type VectorStore interface {
	// UpsertBatches writes records in fixed-size batches sequentially,
	// aborting on the first failed batch. Already-committed batches are not
	// rolled back; partial ingestion is an observable state on failure.
	UpsertBatches(ctx context.Context, records []domain.ChunkRecord) error
	// Search restricts the corpus to the doc_id filter set when non-empty;
	// an empty filter searches the full corpus.
	Search(ctx context.Context, queryVector []float32, topK int, docIDs []string) ([]domain.RetrievalHit, error)
	// DeleteByDocID removes all chunks with an exact doc_id match and
	// returns how many were removed.
	DeleteByDocID(ctx context.Context, docID string) (int, error)
}

// ChatModel is the language-model capability: one deterministic single-turn
// completion, no streaming.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
