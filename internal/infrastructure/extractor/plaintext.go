package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

func extractPlainText(data []byte) ([]domain.Page, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	return []domain.Page{{Text: string(data), PageNumber: 1}}, nil
}
