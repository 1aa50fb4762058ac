package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/delivery/http/middleware"
	"github.com/spaarke-dev/spaarke-sub021/internal/status"
	"github.com/spaarke-dev/spaarke-sub021/internal/usecase"
)

const maxSubmitBodyBytes = 64 << 10 // 64 KB

// RouterDeps bundles the dependencies for the API router.
type RouterDeps struct {
	SubmitUC        *usecase.SubmitJobUsecase
	GetJobUC        *usecase.GetJobUsecase
	StatusSvc       *status.Service
	DBPool          *pgxpool.Pool
	Logger          *zap.Logger
	RateLimitPerMin int
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check (no rate limiting)
		healthHandler := NewHealthHandler(deps.StatusSvc, deps.DBPool, deps.Logger)
		v1.GET("/health", healthHandler.Health)

		// Supported operations
		opHandler := NewOperationHandler()
		v1.GET("/operations", opHandler.List)

		// Job submission and lookup (with rate limiting)
		jobHandler := NewJobHandler(deps.SubmitUC, deps.GetJobUC, deps.Logger)
		v1.POST("/jobs",
			middleware.RateLimiter(deps.RateLimitPerMin),
			middleware.BodySizeLimit(maxSubmitBodyBytes),
			jobHandler.Submit,
		)
		v1.GET("/jobs/:id", jobHandler.GetByID)

		// Real-time status streams
		streamHandler := NewStreamHandler(deps.StatusSvc, deps.Logger)
		v1.GET("/jobs/:id/status/stream", streamHandler.Stream)

		wsHandler := NewWebSocketHandler(deps.StatusSvc, deps.Logger)
		v1.GET("/jobs/:id/status/ws", wsHandler.Stream)
	}

	return router
}
