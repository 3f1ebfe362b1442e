package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	quyche "github.com/lacviet-ai/quyche"
	"github.com/lacviet-ai/quyche/pkg/server/dto"
	"github.com/lacviet-ai/quyche/pkg/types"
)

const maxTopK = 50

// RetrieveHandler answers retrieval requests.
type RetrieveHandler struct {
	client quyche.Retriever
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client quyche.Retriever) *RetrieveHandler {
	return &RetrieveHandler{client: client}
}

// Retrieve handles POST /api/v1/retrieve
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "query must not be empty"})
		return
	}
	if req.TopK > maxTopK {
		req.TopK = maxTopK
	}

	var filters *types.Filters
	if req.DocumentID != "" {
		filters = &types.Filters{DocumentID: req.DocumentID}
	}

	result, err := h.client.Retrieve(c.Request.Context(), req.Query, req.TopK, filters)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, quyche.ErrNotInitialized) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.ErrorResponse{Error: "retrieve_failed", Message: err.Error()})
		return
	}

	chunks := make([]dto.ChunkResult, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		chunks = append(chunks, dto.ChunkResult{
			Content:  chunk.Content,
			Source:   chunk.Source,
			Score:    chunk.Score,
			Metadata: chunk.Metadata,
		})
	}

	c.JSON(http.StatusOK, dto.RetrieveResponse{
		Query:      result.Query,
		Chunks:     chunks,
		TotalFound: result.TotalFound,
	})
}
