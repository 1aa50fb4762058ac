package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development; restrict in production
	},
}

// WebSocketHandler pushes job status updates over a WebSocket connection,
// for frontends without EventSource support.
type WebSocketHandler struct {
	statusSvc *status.Service
	logger    *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(statusSvc *status.Service, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{statusSvc: statusSvc, logger: logger}
}

// Stream handles GET /api/v1/jobs/:id/status/ws (WebSocket upgrade)
func (h *WebSocketHandler) Stream(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.String("job_id", idStr))

	updates := h.statusSvc.SubscribeToJob(c.Request.Context(), id)
	for update := range updates {
		if err := conn.WriteJSON(update); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}
	}

	h.logger.Debug("Status sequence ended, closing WebSocket", zap.String("job_id", idStr))
}
