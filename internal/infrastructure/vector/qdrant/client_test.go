package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

type fakeQdrant struct {
	mu       sync.Mutex
	requests []recordedRequest

	countResult  int
	searchResult []map[string]any
	failUpsert   bool
	missing      bool
}

func (f *fakeQdrant) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   body,
		})
		f.mu.Unlock()

		switch {
		case f.missing:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status":{"error":"collection not found"}}`)
		case strings.HasSuffix(r.URL.Path, "/points") && f.failUpsert:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"status":{"error":"wrong vector size"}}`)
		case strings.HasSuffix(r.URL.Path, "/points/count"):
			fmt.Fprintf(w, `{"result":{"count":%d}}`, f.countResult)
		case strings.HasSuffix(r.URL.Path, "/points/search"):
			result, _ := json.Marshal(map[string]any{"result": f.searchResult})
			_, _ = w.Write(result)
		default:
			fmt.Fprint(w, `{"result":true,"status":"ok"}`)
		}
	})
}

func (f *fakeQdrant) byPath(suffix string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, 0)
	for _, req := range f.requests {
		if strings.HasSuffix(req.path, suffix) {
			out = append(out, req)
		}
	}
	return out
}

func someRecords(n int) []domain.ChunkRecord {
	records := make([]domain.ChunkRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.ChunkRecord{
			ID:         fmt.Sprintf("id-%d", i),
			Vector:     []float32{1, 0},
			Text:       fmt.Sprintf("chunk %d", i),
			DocName:    "Report",
			DocID:      "doc-1",
			ChunkIndex: i,
			Page:       1,
		})
	}
	return records
}

func TestUpsertBatchesSplitsIntoFixedBatches(t *testing.T) {
	fake := &fakeQdrant{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	if err := client.UpsertBatches(context.Background(), someRecords(450)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upserts := fake.byPath("/points")
	if len(upserts) != 3 {
		t.Fatalf("expected 3 upsert batches, got %d", len(upserts))
	}
	sizes := make([]int, 0, len(upserts))
	for _, req := range upserts {
		if req.method != http.MethodPut {
			t.Fatalf("expected PUT upserts, got %s", req.method)
		}
		if !strings.Contains(req.query, "wait=true") {
			t.Fatalf("expected wait=true on upsert, got query %q", req.query)
		}
		points, _ := req.body["points"].([]any)
		sizes = append(sizes, len(points))
	}
	if sizes[0] != 200 || sizes[1] != 200 || sizes[2] != 50 {
		t.Fatalf("expected batch sizes 200/200/50, got %v", sizes)
	}

	creates := fake.byPath("/collections/documents")
	if len(creates) != 1 {
		t.Fatalf("expected one ensure-collection call, got %d", len(creates))
	}
}

func TestUpsertBatchesEnsuresCollectionOnce(t *testing.T) {
	fake := &fakeQdrant{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	for i := 0; i < 3; i++ {
		if err := client.UpsertBatches(context.Background(), someRecords(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	creates := fake.byPath("/collections/documents")
	if len(creates) != 1 {
		t.Fatalf("expected collection created once, got %d calls", len(creates))
	}
}

func TestUpsertBatchesSurfacesErrorBody(t *testing.T) {
	fake := &fakeQdrant{failUpsert: true}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	err := client.UpsertBatches(context.Background(), someRecords(1))
	if err == nil {
		t.Fatal("expected upsert error")
	}
	if !strings.Contains(err.Error(), "wrong vector size") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "upsert batch 0-0") {
		t.Fatalf("expected batch range in error, got %v", err)
	}
}

func TestSearchSendsDocIDFilter(t *testing.T) {
	fake := &fakeQdrant{searchResult: []map[string]any{
		{
			"score": 0.91,
			"payload": map[string]any{
				"text": "golang is fast", "doc_name": "a.pdf", "doc_id": "doc-1",
				"chunk_index": 0, "page": 2,
			},
		},
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	hits, err := client.Search(context.Background(), []float32{1, 0}, 5, []string{"doc-1", " ", "doc-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hit := hits[0]
	if hit.ChunkText != "golang is fast" || hit.FileName != "a.pdf" || hit.PageNo != 2 || hit.Score != 0.91 {
		t.Fatalf("unexpected hit %+v", hit)
	}

	searches := fake.byPath("/points/search")
	if len(searches) != 1 {
		t.Fatalf("expected one search, got %d", len(searches))
	}
	body, _ := json.Marshal(searches[0].body["filter"])
	filter := string(body)
	if !strings.Contains(filter, `"doc_id"`) || !strings.Contains(filter, `"doc-1"`) || !strings.Contains(filter, `"doc-2"`) {
		t.Fatalf("expected doc_id filter with both ids, got %s", filter)
	}
	if strings.Contains(filter, `" "`) {
		t.Fatalf("expected blank ids dropped, got %s", filter)
	}
}

func TestSearchWithoutFilterSearchesWholeCorpus(t *testing.T) {
	fake := &fakeQdrant{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	if _, err := client.Search(context.Background(), []float32{1, 0}, 5, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	searches := fake.byPath("/points/search")
	if _, ok := searches[0].body["filter"]; ok {
		t.Fatalf("expected no filter for empty doc set, got %v", searches[0].body)
	}
}

func TestDeleteByDocIDCountsThenDeletes(t *testing.T) {
	fake := &fakeQdrant{countResult: 7}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	count, err := client.DeleteByDocID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 deleted, got %d", count)
	}

	if len(fake.byPath("/points/count")) != 1 {
		t.Fatal("expected one count call")
	}
	deletes := fake.byPath("/points/delete")
	if len(deletes) != 1 {
		t.Fatalf("expected one delete call, got %d", len(deletes))
	}
	if !strings.Contains(deletes[0].query, "wait=true") {
		t.Fatalf("expected wait=true on delete, got %q", deletes[0].query)
	}
}

func TestDeleteByDocIDNothingStoredSkipsDelete(t *testing.T) {
	fake := &fakeQdrant{countResult: 0}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	count, err := client.DeleteByDocID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 deleted, got %d", count)
	}
	if len(fake.byPath("/points/delete")) != 0 {
		t.Fatal("expected no delete call when nothing is stored")
	}
}

func TestDeleteByDocIDMissingCollectionIsZero(t *testing.T) {
	fake := &fakeQdrant{missing: true}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New(server.URL, "documents", 2, 200)
	count, err := client.DeleteByDocID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("expected missing collection treated as empty, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 deleted, got %d", count)
	}
}
