package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

// DeleteDocumentUseCase removes all of a document's chunks from the vector
// store (exact doc_id match only) and drops the registry row. Returns how
// many chunks were deleted.
type DeleteDocumentUseCase struct {
	repo     ports.DocumentRepository
	vectorDB ports.VectorStore
}

func NewDeleteDocumentUseCase(repo ports.DocumentRepository, vectorDB ports.VectorStore) *DeleteDocumentUseCase {
	return &DeleteDocumentUseCase{repo: repo, vectorDB: vectorDB}
}

func (uc *DeleteDocumentUseCase) Delete(ctx context.Context, docID string) (int, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "delete document", errors.New("doc_id is required"))
	}

	count, err := uc.vectorDB.DeleteByDocID(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}

	if err := uc.repo.Delete(ctx, docID); err != nil {
		return count, fmt.Errorf("delete document row: %w", err)
	}
	return count, nil
}
