// Package ollama implements the embedding gateway over the Ollama HTTP
// API. Vectors come back L2-normalized at a fixed dimension; order is
// preserved batch by batch.
package ollama

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

const defaultEmbedBatchSize = 32

type Embedder struct {
	baseURL    string
	model      string
	dimension  int
	batchSize  int
	httpClient *http.Client
}

// NewEmbedder builds an embedding gateway. dimension is the configured
// vector index dimension (384 in the reference configuration); any batch
// returning a different width fails the whole call.
func NewEmbedder(baseURL, model string, dimension, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	return &Embedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimension:  dimension,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Embed returns one vector per input text, in input order. The batch size
// is a performance knob only; a failed batch fails the call with no
// partial result.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	if len(out) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrConsistency,
			"embed texts",
			fmt.Errorf("vectors/texts mismatch: %d/%d", len(out), len(texts)),
		)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	request := map[string]any{
		"model": e.model,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrConsistency,
			"embed batch",
			fmt.Errorf("backend returned %d vectors for %d texts", len(response.Embeddings), len(texts)),
		)
	}

	for i, vec := range response.Embeddings {
		if e.dimension > 0 && len(vec) != e.dimension {
			return nil, domain.WrapError(
				domain.ErrConsistency,
				"embed batch",
				fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), e.dimension),
			)
		}
		l2Normalize(vec)
	}
	return response.Embeddings, nil
}

func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
