package chunking

import (
	"context"
	"regexp"
	"strings"
)

// Heading-like lines: all-caps runs of length >= 6, "Section N" markers, or
// Roman-numeral list markers at line start.
var headingPattern = regexp.MustCompile(`(?m)^(?:[A-Z][A-Z \d.\-:]{5,}|Section\s+\d+|[IVXLC]+\.\s)`)

// SectionChunker cuts page text at detected heading boundaries and falls
// back to paragraph accumulation when no headings are present.
type SectionChunker struct {
	MinLen int
}

func NewSectionChunker(minLen int) *SectionChunker {
	if minLen <= 0 {
		minLen = 200
	}
	return &SectionChunker{MinLen: minLen}
}

func (c *SectionChunker) Chunk(_ context.Context, pageText string) ([]string, error) {
	text := normalizeNewlines(pageText)
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return c.splitParagraphs(text), nil
	}

	chunks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := strings.TrimSpace(text[loc[0]:end])
		if len(section) > c.MinLen {
			chunks = append(chunks, section)
		}
	}
	return chunks, nil
}

// splitParagraphs accumulates blank-line-separated paragraphs and flushes
// whenever the buffer grows past MinLen. Text with no blank lines at all
// still flushes once at the end, so only the final chunk may fall short of
// MinLen.
func (c *SectionChunker) splitParagraphs(text string) []string {
	var chunks []string
	var buf strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		buf.WriteString(para)
		buf.WriteString("\n\n")
		if buf.Len() > c.MinLen {
			if chunk := strings.TrimSpace(buf.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			buf.Reset()
		}
	}
	if chunk := strings.TrimSpace(buf.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
