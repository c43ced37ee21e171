package chunking

import (
	"context"
	"fmt"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

// SemanticGrouper is the coarser-grained alternative to SectionChunker:
// it splits text into fixed-size raw chunks, embeds them in one batch and
// greedily merges consecutive chunks whose cosine similarity to the group
// anchor is at or above the threshold. Strictly sequential scan, adjacent
// chunks only, no global clustering.
type SemanticGrouper struct {
	embedder  ports.Embedder
	splitter  *Splitter
	threshold float64
}

func NewSemanticGrouper(embedder ports.Embedder, chunkSize int, threshold float64) *SemanticGrouper {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.9
	}
	return &SemanticGrouper{
		embedder:  embedder,
		splitter:  NewSplitter(chunkSize),
		threshold: threshold,
	}
}

func (g *SemanticGrouper) Chunk(ctx context.Context, pageText string) ([]string, error) {
	raw := g.splitter.Split(normalizeNewlines(pageText))
	if len(raw) == 0 {
		return nil, nil
	}

	vectors, err := g.embedder.Embed(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("embed raw chunks: %w", err)
	}
	if len(vectors) != len(raw) {
		return nil, domain.WrapError(
			domain.ErrConsistency,
			"group chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(raw)),
		)
	}

	grouped := make([]string, 0, len(raw))
	i := 0
	for i < len(raw) {
		group := []string{raw[i]}
		j := i + 1
		for j < len(raw) {
			if cosineSimilarity(vectors[i], vectors[j]) < g.threshold {
				break
			}
			group = append(group, raw[j])
			j++
		}
		grouped = append(grouped, strings.Join(group, "\n"))
		i = j
	}
	return grouped, nil
}

// Vectors from the embedding gateway are L2-normalized, so the dot product
// is the cosine similarity (higher = closer).
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
