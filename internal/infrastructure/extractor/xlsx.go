package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// extractXLSX maps each sheet to one synthetic page so retrieval hits can
// at least point at the right sheet.
func extractXLSX(data []byte) ([]domain.Page, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	pages := make([]domain.Page, 0, len(sheets))
	for i, sheet := range sheets {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, sheet)
		for _, row := range rows {
			lines = append(lines, strings.Join(row, ", "))
		}
		pages = append(pages, domain.Page{
			Text:       strings.Join(lines, "\n"),
			PageNumber: i + 1,
		})
	}
	return pages, nil
}
