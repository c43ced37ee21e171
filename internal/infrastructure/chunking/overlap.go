package chunking

import "strings"

// Dedupe drops exact-text duplicates within one document. Chunks are
// trimmed, the first occurrence wins, order is preserved. Idempotent.
func Dedupe(chunks []string) []string {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		c := strings.TrimSpace(chunk)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AddOverlap prepends the last overlapSentences sentences of the previous
// chunk (or the whole previous chunk when it has fewer) to each chunk after
// the first, separated by a newline. The first chunk passes through
// unchanged. Input chunks are expected to be deduplicated already; the
// prefix is always taken from the pre-overlap neighbor.
func AddOverlap(chunks []string, overlapSentences int) []string {
	if overlapSentences <= 0 {
		return chunks
	}
	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if i == 0 {
			out = append(out, chunk)
			continue
		}
		prev := strings.Split(chunks[i-1], ".")
		prefix := chunks[i-1]
		if len(prev) > overlapSentences {
			prefix = strings.Join(prev[len(prev)-overlapSentences:], ".")
		}
		out = append(out, strings.TrimSpace(prefix+"\n"+chunk))
	}
	return out
}
