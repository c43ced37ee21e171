// Package qdrant adapts the Qdrant REST API to the vector store port.
// Collections use the cosine distance; scores returned by search are
// cosine similarity, higher = closer. All mutating calls pass wait=true,
// which is Qdrant's make-it-searchable barrier (there is no separate
// flush RPC).
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

const defaultUpsertBatchSize = 200

type Client struct {
	baseURL    string
	collection string
	vectorSize int
	batchSize  int
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
}

// New builds a client for one collection. vectorSize must match the
// embedding dimension; a mismatch is a configuration error surfaced by
// Qdrant on the first upsert.
func New(baseURL, collection string, vectorSize, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = defaultUpsertBatchSize
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		vectorSize: vectorSize,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertBatches writes records in fixed-size batches sequentially. The
// first failed batch aborts the call; earlier batches stay committed, so a
// failed ingestion is observable as a partial document until the caller
// re-ingests (delete-then-reinsert).
func (c *Client) UpsertBatches(ctx context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := c.ensureCollection(ctx); err != nil {
		return err
	}

	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := c.upsertBatch(ctx, records[start:end]); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (c *Client) upsertBatch(ctx context.Context, records []domain.ChunkRecord) error {
	points := make([]point, 0, len(records))
	for _, rec := range records {
		points = append(points, point{
			ID:     rec.ID,
			Vector: rec.Vector,
			Payload: map[string]any{
				"text":        rec.Text,
				"doc_name":    rec.DocName,
				"doc_id":      rec.DocID,
				"chunk_index": rec.ChunkIndex,
				"page":        rec.Page,
			},
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, map[string]any{"points": points}, nil, "upsert")
}

// Search restricts the corpus to the given doc_ids when the filter set is
// non-empty; an empty set searches the full corpus. Hits come back ordered
// by similarity, at most topK of them.
func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	topK int,
	docIDs []string,
) ([]domain.RetrievalHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter := docIDFilter(docIDs); filter != nil {
		reqBody["filter"] = filter
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievalHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievalHit{
			ChunkText: getStringPayload(r.Payload, "text"),
			DocID:     getStringPayload(r.Payload, "doc_id"),
			FileName:  getStringPayload(r.Payload, "doc_name"),
			PageNo:    getIntPayload(r.Payload, "page"),
			Score:     r.Score,
		})
	}
	return out, nil
}

// DeleteByDocID removes all points whose doc_id matches exactly and
// returns how many there were. Qdrant's delete reply carries no count, so
// the count is taken just before the delete.
func (c *Client) DeleteByDocID(ctx context.Context, docID string) (int, error) {
	filter := docIDFilter([]string{docID})

	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	countURL := fmt.Sprintf("%s/collections/%s/points/count", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPost, countURL, map[string]any{"filter": filter, "exact": true}, &countResp, "count")
	if err != nil {
		if isMissingCollection(err) {
			return 0, nil
		}
		return 0, err
	}
	if countResp.Result.Count == 0 {
		return 0, nil
	}

	deleteURL := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, deleteURL, map[string]any{"filter": filter}, nil, "delete"); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

func docIDFilter(docIDs []string) map[string]any {
	ids := make([]string, 0, len(docIDs))
	for _, id := range docIDs {
		if s := strings.TrimSpace(id); s != "" {
			ids = append(ids, s)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return map[string]any{
		"must": []map[string]any{
			{
				"key": "doc_id",
				"match": map[string]any{
					"any": ids,
				},
			},
		},
	}
}

func (c *Client) ensureCollection(ctx context.Context) error {
	c.ensureMu.Lock()
	if c.ensuredCollection {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if it already exists.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant %s status: %s: %s", operation, resp.Status, msg)
		}
		return fmt.Errorf("qdrant %s status: %s", operation, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// Deleting from a collection that was never created is a no-op, not an
// error: nothing was stored for the doc_id.
func isMissingCollection(err error) bool {
	return err != nil && strings.Contains(err.Error(), "404")
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
