package extractor

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// extractCSV flattens rows into comma-joined lines on one synthetic page.
func extractCSV(data []byte) ([]domain.Page, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, strings.Join(record, ", "))
	}
	return []domain.Page{{Text: strings.Join(lines, "\n"), PageNumber: 1}}, nil
}
