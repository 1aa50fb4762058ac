package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
)

// OperationHandler handles operation listing requests.
type OperationHandler struct{}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler() *OperationHandler {
	return &OperationHandler{}
}

// List handles GET /api/v1/operations
func (h *OperationHandler) List(c *gin.Context) {
	operations := []domain.OperationInfo{
		{
			Name:        domain.OpSummarize,
			Description: "Produce an AI summary of the document",
		},
		{
			Name:        domain.OpExtract,
			Description: "Extract structured fields from the document",
		},
		{
			Name:        domain.OpRedact,
			Description: "Detect and redact sensitive content",
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"operations": operations,
	})
}
