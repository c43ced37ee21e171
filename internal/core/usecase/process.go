package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

// ProcessDocumentUseCase runs the ingestion pipeline for one uploaded
// document: extract pages, chunk each page, embed all chunks in order and
// upsert the records. All steps are sequential within one call; concurrent
// ingestion of different doc_ids is isolated by construction, while ingest
// and query on the same doc_id have no transactional boundary; a query may
// observe a partially inserted document.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.PageExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.PageExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectorDB:  vectorDB,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, docID string) error {
	if err := uc.repo.UpdateStatus(ctx, docID, domain.StatusProcessing, 0, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	chunkCount, err := uc.pipeline(ctx, docID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, docID, domain.StatusFailed, 0, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, docID, domain.StatusReady, chunkCount, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) pipeline(ctx context.Context, docID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("fetch document by id: %w", err)
	}

	pages, err := uc.extractPages(ctx, doc)
	if err != nil {
		return 0, err
	}

	// Re-ingestion is delete-then-reinsert: purge whatever an earlier run
	// left behind before writing the new chunk stream.
	if _, err := uc.vectorDB.DeleteByDocID(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("purge previous chunks: %w", err)
	}

	chunks, pageNos, err := uc.chunkPages(ctx, pages)
	if err != nil {
		return 0, err
	}

	vectors, err := uc.embed(ctx, chunks)
	if err != nil {
		return 0, err
	}

	records := buildChunkRecords(doc, chunks, pageNos, vectors)
	if err := uc.vectorDB.UpsertBatches(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert chunk records: %w", err)
	}
	return len(records), nil
}

func (uc *ProcessDocumentUseCase) extractPages(ctx context.Context, doc *domain.Document) ([]domain.Page, error) {
	pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	nonBlank := pages[:0]
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			nonBlank = append(nonBlank, page)
		}
	}
	if len(nonBlank) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract pages", errors.New("no text could be extracted from document"))
	}
	return nonBlank, nil
}

// chunkPages runs the configured chunk pipeline per page and collates the
// results into one document-wide chunk stream, each chunk keeping the page
// number it came from.
func (uc *ProcessDocumentUseCase) chunkPages(ctx context.Context, pages []domain.Page) ([]string, []int, error) {
	var chunks []string
	var pageNos []int
	for _, page := range pages {
		pageChunks, err := uc.chunker.Chunk(ctx, page.Text)
		if err != nil {
			return nil, nil, fmt.Errorf("chunk page %d: %w", page.PageNumber, err)
		}
		for _, chunk := range pageChunks {
			chunks = append(chunks, chunk)
			pageNos = append(pageNos, page.PageNumber)
		}
	}
	if len(chunks) == 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	return chunks, pageNos, nil
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrConsistency,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	return vectors, nil
}

// chunk_index is assigned strictly sequentially over the final post-overlap
// chunk sequence and matches embedding order and storage order one-to-one.
func buildChunkRecords(doc *domain.Document, chunks []string, pageNos []int, vectors [][]float32) []domain.ChunkRecord {
	records := make([]domain.ChunkRecord, 0, len(chunks))
	for i := range chunks {
		records = append(records, domain.ChunkRecord{
			ID:         uuid.NewString(),
			Vector:     vectors[i],
			Text:       chunks[i],
			DocName:    doc.Title,
			DocID:      doc.ID,
			ChunkIndex: i,
			Page:       pageNos[i],
		})
	}
	return records
}
