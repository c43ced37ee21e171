// Package extractor turns stored source files into ordered page sequences.
// One extractor per file extension; formats without native pagination get
// a synthetic single page (one per sheet for spreadsheets).
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

type extractFunc func(data []byte) ([]domain.Page, error)

type Registry struct {
	storage ports.ObjectStorage
	byExt   map[string]extractFunc
}

func NewRegistry(storage ports.ObjectStorage) *Registry {
	return &Registry{
		storage: storage,
		byExt: map[string]extractFunc{
			".pdf":  extractPDF,
			".docx": extractDOCX,
			".txt":  extractPlainText,
			".html": extractHTML,
			".htm":  extractHTML,
			".csv":  extractCSV,
			".xlsx": extractXLSX,
		},
	}
}

func (r *Registry) Extract(ctx context.Context, doc *domain.Document) ([]domain.Page, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	fn, ok := r.byExt[ext]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract", fmt.Errorf("unsupported file type: %q", ext))
	}

	reader, err := r.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	pages, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ext, err)
	}

	out := pages[:0]
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			out = append(out, page)
		}
	}
	return out, nil
}
