package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/status"
)

// StreamHandler serves job status updates as a server-push event stream.
type StreamHandler struct {
	statusSvc *status.Service
	logger    *zap.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(statusSvc *status.Service, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{statusSvc: statusSvc, logger: logger}
}

// Stream handles GET /api/v1/jobs/:id/status/stream
//
// The subscription is scoped to the request context: client disconnects and
// request cancellation end the update sequence, and the sequence also ends
// on its own once a terminal update arrives. With no broker configured the
// stream opens and closes immediately.
func (h *StreamHandler) Stream(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	sw, err := NewStreamWriter(c.Writer)
	if err != nil {
		h.logger.Error("Streaming unsupported by response writer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming unsupported"})
		return
	}

	sw.WriteHeaders()
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	h.logger.Debug("Status stream opened", zap.String("job_id", idStr))

	updates := h.statusSvc.SubscribeToJob(c.Request.Context(), id)
	for update := range updates {
		if err := sw.WriteStatusUpdate(&update); err != nil {
			// Client went away mid-write; stop producing.
			h.logger.Debug("Status stream write failed (client disconnected)",
				zap.String("job_id", idStr),
				zap.Error(err),
			)
			return
		}
	}

	h.logger.Debug("Status stream closed", zap.String("job_id", idStr))
}
