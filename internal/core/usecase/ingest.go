package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload persists the source file, upserts the registry row and publishes
// the ingestion event. doc_id is caller-supplied and unique per logical
// document; re-uploading the same doc_id supersedes the previous content
// once the worker reprocesses it.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	docID, title, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("doc_id is required"))
	}
	if strings.TrimSpace(title) == "" {
		title = filename
	}

	storageKey := fmt.Sprintf("%s_%s", docID, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          docID,
		Title:       title,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("upsert document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
