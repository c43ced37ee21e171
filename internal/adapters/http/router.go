package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/devbot-ai/rag-backend/internal/core/ports"
	"github.com/devbot-ai/rag-backend/internal/observability/metrics"
)

const maxUploadBytes = 64 << 20

type Router struct {
	ingestor ports.DocumentIngestor
	querySvc ports.QueryService
	deleter  ports.DocumentDeleter
	reader   ports.DocumentReader
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	querySvc ports.QueryService,
	deleter ports.DocumentDeleter,
	reader ports.DocumentReader,
	httpMetrics *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		ingestor: ingestor,
		querySvc: querySvc,
		deleter:  deleter,
		reader:   reader,
		metrics:  httpMetrics,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/rag/query", rt.query)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	docID := strings.TrimSpace(r.FormValue("doc_id"))
	if docID == "" {
		writeError(w, http.StatusBadRequest, "form field 'doc_id' is required")
		return
	}

	doc, err := rt.ingestor.Upload(
		r.Context(),
		docID,
		r.FormValue("title"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.reader.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		deleted, err := rt.deleter.Delete(r.Context(), id)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "deleted",
			"doc_id":        id,
			"deleted_count": deleted,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Query  string   `json:"query"`
		DocIDs []string `json:"doc_ids"`
		TopK   int      `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	result, err := rt.querySvc.Answer(r.Context(), req.Query, req.DocIDs, req.TopK)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordQuery(rt.service, string(result.Status), len(result.Sources), time.Since(start))
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
