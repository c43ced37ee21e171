package extractor

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

// extractHTML walks the token stream and keeps visible text, skipping
// script and style bodies. Block-level boundaries are approximated with
// newlines so the segmenter's paragraph fallback still has something to
// cut on.
func extractHTML(data []byte) ([]domain.Page, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))
	var b strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return []domain.Page{{Text: b.String(), PageNumber: 1}}, nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				b.WriteString("\n")
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
	}
}
