package chunking

import (
	"context"

	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

// Pipeline composes a base segmentation strategy with per-document
// deduplication and overlap stitching. The base strategy is either the
// SectionChunker or the SemanticGrouper, selected by configuration.
type Pipeline struct {
	base             ports.Chunker
	overlapSentences int
}

func NewPipeline(base ports.Chunker, overlapSentences int) *Pipeline {
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &Pipeline{base: base, overlapSentences: overlapSentences}
}

func (p *Pipeline) Chunk(ctx context.Context, pageText string) ([]string, error) {
	raw, err := p.base.Chunk(ctx, pageText)
	if err != nil {
		return nil, err
	}
	return AddOverlap(Dedupe(raw), p.overlapSentences), nil
}
