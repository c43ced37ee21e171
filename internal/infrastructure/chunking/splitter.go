package chunking

import "strings"

// Splitter cuts text into size-bounded raw chunks with no overlap. It is
// the first stage of the semantic grouping strategy.
type Splitter struct {
	ChunkSize int
}

func NewSplitter(chunkSize int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Splitter{ChunkSize: chunkSize}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}
