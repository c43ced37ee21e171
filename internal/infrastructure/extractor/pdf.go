package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// extractPDF yields one page entry per PDF page, 1-based. Pages whose text
// layer cannot be decoded are skipped rather than failing the document;
// an entirely unreadable document surfaces as an empty page set upstream.
func extractPDF(data []byte) ([]domain.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]domain.Page, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, domain.Page{Text: text, PageNumber: i})
	}
	return pages, nil
}
