package domain

// RetrievalHit is one ranked search result with provenance. Score is
// Qdrant cosine similarity: higher is closer. The same convention holds
// everywhere in this codebase.
type RetrievalHit struct {
	ChunkText string  `json:"chunk_text"`
	DocID     string  `json:"doc_id"`
	FileName  string  `json:"file_name"`
	PageNo    int     `json:"page_no"`
	Score     float64 `json:"score"`
}

// Source points at the document page an answer item was grounded on.
type Source struct {
	FileName string `json:"file_name" yaml:"file_name"`
	PageNo   int    `json:"page_no" yaml:"page_no"`
}

// AnswerItem is one labeled point of a synthesized answer. Never persisted.
type AnswerItem struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Sources     []Source `json:"sources" yaml:"sources"`
}

const (
	QueryStatusSuccess = "success"
	QueryStatusError   = "error"
)

// QueryResult is the tagged outcome of a single query attempt. Grounding
// and parse failures are values here, not Go errors: Message always
// carries enough raw diagnostic text to debug.
type QueryResult struct {
	Status  string       `json:"status"`
	Answer  []AnswerItem `json:"answer,omitempty"`
	Sources []Source     `json:"sources,omitempty"`
	Message string       `json:"message,omitempty"`
}
