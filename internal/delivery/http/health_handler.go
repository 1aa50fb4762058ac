package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/status"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	statusSvc *status.Service
	dbPool    *pgxpool.Pool
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(statusSvc *status.Service, dbPool *pgxpool.Pool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{statusSvc: statusSvc, dbPool: dbPool, logger: logger}
}

// Health handles GET /api/v1/health
//
// The database is load-bearing: if it is down the service is unhealthy. The
// status broker is not: without it jobs still run, only real-time
// notifications are lost, so a broker outage reports "degraded" with 200.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := true
	if h.dbPool != nil {
		if err := h.dbPool.Ping(ctx); err != nil {
			h.logger.Warn("Database health check failed", zap.Error(err))
			dbOK = false
		}
	}

	brokerOK := h.statusSvc.IsHealthy(ctx)

	overall := "ok"
	code := http.StatusOK
	switch {
	case !dbOK:
		overall = "unhealthy"
		code = http.StatusServiceUnavailable
	case !brokerOK:
		overall = "degraded"
	}

	c.JSON(code, gin.H{
		"status": overall,
		"services": gin.H{
			"postgres": boolToStatus(dbOK),
			"broker":   boolToStatus(brokerOK),
		},
	})
}

func boolToStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "down"
}
