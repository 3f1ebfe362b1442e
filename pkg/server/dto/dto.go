// Package dto defines the request and response shapes of the HTTP API.
package dto

// RetrieveRequest is the body of POST /api/v1/retrieve.
type RetrieveRequest struct {
	Query      string `json:"query" binding:"required"`
	TopK       int    `json:"top_k"`
	DocumentID string `json:"document_id"`
}

// ChunkResult is one ranked chunk in a retrieval response.
type ChunkResult struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RetrieveResponse is the body returned by POST /api/v1/retrieve.
type RetrieveResponse struct {
	Query      string        `json:"query"`
	Chunks     []ChunkResult `json:"chunks"`
	TotalFound int           `json:"total_found"`
}

// DocumentSummary is one corpus document without its content.
type DocumentSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	EffectiveDate string   `json:"effective_date,omitempty"`
	ChunkCount    int      `json:"chunk_count"`
}

// DocumentResponse is one document including its full markdown.
type DocumentResponse struct {
	DocumentSummary
	Content string `json:"content"`
}

// ListDocumentsResponse is the body of GET /api/v1/documents.
type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
