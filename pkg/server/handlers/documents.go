package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	quyche "github.com/lacviet-ai/quyche"
	"github.com/lacviet-ai/quyche/pkg/server/dto"
	"github.com/lacviet-ai/quyche/pkg/types"
)

// DocumentsHandler exposes the loaded corpus documents.
type DocumentsHandler struct {
	client quyche.CorpusBrowser
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(client quyche.CorpusBrowser) *DocumentsHandler {
	return &DocumentsHandler{client: client}
}

// List handles GET /api/v1/documents
func (h *DocumentsHandler) List(c *gin.Context) {
	docs := h.client.Documents()

	summaries := make([]dto.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, summarize(doc))
	}

	c.JSON(http.StatusOK, dto.ListDocumentsResponse{
		Documents: summaries,
		Total:     len(summaries),
	})
}

// Get handles GET /api/v1/documents/:id
func (h *DocumentsHandler) Get(c *gin.Context) {
	doc, err := h.client.Document(c.Param("id"))
	if err != nil {
		if errors.Is(err, quyche.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "document_not_found", Message: err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.DocumentResponse{
		DocumentSummary: summarize(doc),
		Content:         doc.Content,
	})
}

func summarize(doc *types.Document) dto.DocumentSummary {
	return dto.DocumentSummary{
		ID:            doc.ID,
		Title:         doc.Title,
		Description:   doc.Description,
		Keywords:      doc.Keywords,
		EffectiveDate: doc.EffectiveDate,
		ChunkCount:    len(doc.Chunks),
	}
}
