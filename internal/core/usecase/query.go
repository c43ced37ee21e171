package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
	"github.com/devbot-ai/rag-backend/internal/core/llmjson"
	"github.com/devbot-ai/rag-backend/internal/core/ports"
)

const noRelevantContentMessage = "No relevant content found."

const jsonArraySystemInstruction = "You are a helpful assistant that always returns valid JSON arrays and nothing else."

// QueryUseCase answers a question from the stored corpus: embed the query,
// run a doc_id-filtered similarity search, then synthesize a grounded,
// source-attributed JSON answer with one deterministic model call.
type QueryUseCase struct {
	embedder    ports.Embedder
	vectorDB    ports.VectorStore
	model       ports.ChatModel
	defaultTopK int
}

func NewQueryUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	model ports.ChatModel,
	defaultTopK int,
) *QueryUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &QueryUseCase{
		embedder:    embedder,
		vectorDB:    vectorDB,
		model:       model,
		defaultTopK: defaultTopK,
	}
}

// Answer returns a Go error only for infrastructure failures on the
// retrieval path. Grounding and parse failures are values: a QueryResult
// with status "error" whose message carries the raw model output.
func (uc *QueryUseCase) Answer(
	ctx context.Context,
	query string,
	docIDs []string,
	topK int,
) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query is required"))
	}
	if topK <= 0 {
		topK = uc.defaultTopK
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.vectorDB.Search(ctx, queryVector, topK, docIDs)
	if err != nil {
		return nil, fmt.Errorf("search vector db: %w", err)
	}

	return uc.synthesize(ctx, query, hits), nil
}

// synthesize is the single-query state machine: NoContent short-circuits
// before any model call; otherwise one prompt, one completion, one
// repair-and-parse attempt. No retries across states.
func (uc *QueryUseCase) synthesize(ctx context.Context, query string, hits []domain.RetrievalHit) *domain.QueryResult {
	if len(hits) == 0 {
		return &domain.QueryResult{
			Status:  domain.QueryStatusError,
			Message: noRelevantContentMessage,
		}
	}

	prompt := buildGroundingPrompt(query, hits)
	raw, err := uc.model.Complete(ctx, jsonArraySystemInstruction, prompt)
	if err != nil {
		return &domain.QueryResult{
			Status:  domain.QueryStatusError,
			Message: fmt.Sprintf("model call failed: %v", err),
		}
	}

	items, err := llmjson.ParseAnswerItems(raw)
	if err != nil {
		return &domain.QueryResult{
			Status:  domain.QueryStatusError,
			Message: fmt.Sprintf("failed to parse model response: %v\nRaw model output:\n%s", err, raw),
		}
	}

	return &domain.QueryResult{
		Status:  domain.QueryStatusSuccess,
		Answer:  items,
		Sources: unifySources(items),
	}
}

// buildContextBlock labels every chunk with its provenance so the model can
// cite file and page.
func buildContextBlock(hits []domain.RetrievalHit) string {
	sections := make([]string, 0, len(hits))
	for _, hit := range hits {
		sections = append(sections, fmt.Sprintf("[%s | Page %d]\n%s", hit.FileName, hit.PageNo, hit.ChunkText))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func buildGroundingPrompt(query string, hits []domain.RetrievalHit) string {
	return fmt.Sprintf(`You are an intelligent AI assistant designed to provide factual, insightful, and context-grounded answers based strictly on the provided CONTEXT.

## Your Objective:
Use the CONTEXT to answer the USER QUESTION in the most comprehensive, insightful, and information-rich manner possible. Only use information explicitly found in the context. Do NOT make assumptions or add external knowledge.

## Output Format:
Return your response as a JSON array, where each item has the following structure:
- name: a clear, engaging title for the piece of information
- description: a rich explanation blending paragraphs and bullet points, grounded in the context
- sources: a list of objects, each containing:
    - "file_name": string, the name of the source file
    - "page_no": int, the page number where the information was found

If the context does not contain enough information to answer the question, return an empty array [] with no other output or explanation.

## CONTEXT:
%s

## USER QUESTION:
%s

## YOUR ANSWER:
`, buildContextBlock(hits), query)
}

// unifySources aggregates a deduplicated source list across all items,
// keyed by (file_name, page_no), preserving first-seen order.
func unifySources(items []domain.AnswerItem) []domain.Source {
	seen := make(map[domain.Source]struct{})
	out := make([]domain.Source, 0)
	for _, item := range items {
		for _, src := range item.Sources {
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			out = append(out, src)
		}
	}
	return out
}
