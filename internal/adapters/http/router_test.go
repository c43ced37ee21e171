package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

type fakeIngestor struct {
	doc    *domain.Document
	err    error
	docID  string
	title  string
	called bool
}

func (f *fakeIngestor) Upload(_ context.Context, docID, title, _, _ string, _ io.Reader) (*domain.Document, error) {
	f.called = true
	f.docID = docID
	f.title = title
	return f.doc, f.err
}

type fakeQueryService struct {
	result *domain.QueryResult
	err    error
	query  string
	docIDs []string
	topK   int
}

func (f *fakeQueryService) Answer(_ context.Context, query string, docIDs []string, topK int) (*domain.QueryResult, error) {
	f.query = query
	f.docIDs = docIDs
	f.topK = topK
	return f.result, f.err
}

type fakeDeleter struct {
	count int
	err   error
	docID string
}

func (f *fakeDeleter) Delete(_ context.Context, docID string) (int, error) {
	f.docID = docID
	return f.count, f.err
}

type fakeReader struct {
	doc *domain.Document
	err error
}

func (f *fakeReader) GetByID(context.Context, string) (*domain.Document, error) {
	return f.doc, f.err
}

func multipartUpload(t *testing.T, docID, title, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if docID != "" {
		_ = writer.WriteField("doc_id", docID)
	}
	if title != "" {
		_ = writer.WriteField("title", title)
	}
	_ = writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentAccepted(t *testing.T) {
	ingestor := &fakeIngestor{doc: &domain.Document{ID: "doc-1", Status: domain.StatusUploaded}}
	router := NewRouter(ingestor, &fakeQueryService{}, &fakeDeleter{}, &fakeReader{}, nil, "test")

	body, contentType := multipartUpload(t, "doc-1", "Report", "r.pdf", "pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if !ingestor.called || ingestor.docID != "doc-1" || ingestor.title != "Report" {
		t.Fatalf("unexpected ingestor call: %+v", ingestor)
	}

	var resp domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.StatusUploaded {
		t.Fatalf("unexpected response document %+v", resp)
	}
}

func TestUploadDocumentRequiresDocID(t *testing.T) {
	ingestor := &fakeIngestor{}
	router := NewRouter(ingestor, &fakeQueryService{}, &fakeDeleter{}, &fakeReader{}, nil, "test")

	body, contentType := multipartUpload(t, "", "", "r.pdf", "pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ingestor.called {
		t.Fatal("expected ingestor not called without doc_id")
	}
}

func TestQueryEndpoint(t *testing.T) {
	svc := &fakeQueryService{result: &domain.QueryResult{
		Status: domain.QueryStatusSuccess,
		Answer: []domain.AnswerItem{{Name: "A", Description: "d"}},
		Sources: []domain.Source{
			{FileName: "a.pdf", PageNo: 1},
		},
	}}
	router := NewRouter(&fakeIngestor{}, svc, &fakeDeleter{}, &fakeReader{}, nil, "test")

	reqBody := `{"query":"what is go","doc_ids":["doc-1"],"top_k":3}`
	req := httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()

	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.query != "what is go" || svc.topK != 3 || len(svc.docIDs) != 1 {
		t.Fatalf("unexpected service call: %+v", svc)
	}

	var result domain.QueryResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != domain.QueryStatusSuccess || len(result.Sources) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestQueryEndpointRequiresQuery(t *testing.T) {
	router := NewRouter(&fakeIngestor{}, &fakeQueryService{}, &fakeDeleter{}, &fakeReader{}, nil, "test")

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetDocumentMapsNotFound(t *testing.T) {
	reader := &fakeReader{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("doc_id=missing"))}
	router := NewRouter(&fakeIngestor{}, &fakeQueryService{}, &fakeDeleter{}, reader, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteDocumentReturnsCount(t *testing.T) {
	deleter := &fakeDeleter{count: 9}
	router := NewRouter(&fakeIngestor{}, &fakeQueryService{}, deleter, &fakeReader{}, nil, "test")

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if deleter.docID != "doc-1" {
		t.Fatalf("expected delete of doc-1, got %q", deleter.docID)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["deleted_count"] != float64(9) || resp["status"] != "deleted" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestTemporaryErrorMapsTo503(t *testing.T) {
	svc := &fakeQueryService{err: domain.WrapError(domain.ErrTemporary, "answer query", errors.New("embedder down"))}
	router := NewRouter(&fakeIngestor{}, svc, &fakeDeleter{}, &fakeReader{}, nil, "test")

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := NewRouter(&fakeIngestor{}, &fakeQueryService{}, &fakeDeleter{}, &fakeReader{}, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/v1/rag/query", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := NewRouter(&fakeIngestor{}, &fakeQueryService{}, &fakeDeleter{}, &fakeReader{}, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("expected request id header set")
	}
}
