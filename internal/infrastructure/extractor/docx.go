package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// extractDOCX reads the OOXML main document part directly: text runs live
// in w:t elements, paragraphs in w:p. DOCX has no fixed pagination, so the
// whole body lands on one synthetic page.
func extractDOCX(data []byte) ([]domain.Page, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var docXML io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			docXML, err = file.Open()
			if err != nil {
				return nil, fmt.Errorf("open document part: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx has no word/document.xml part")
	}
	defer docXML.Close()

	text, err := decodeDocumentXML(docXML)
	if err != nil {
		return nil, err
	}
	return []domain.Page{{Text: text, PageNumber: 1}}, nil
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString(" ")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}
