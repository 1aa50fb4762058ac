package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/broker"
	"github.com/spaarke-dev/spaarke-sub021/internal/config"
	handler "github.com/spaarke-dev/spaarke-sub021/internal/delivery/http"
	"github.com/spaarke-dev/spaarke-sub021/internal/publisher"
	"github.com/spaarke-dev/spaarke-sub021/internal/repository/postgres"
	"github.com/spaarke-dev/spaarke-sub021/internal/status"
	"github.com/spaarke-dev/spaarke-sub021/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting Spaarke API Server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Connect to PostgreSQL
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis. The status broker is optional: without it the API
	// still serves submissions and lookups, but status streams stay empty.
	rdb := connectRedis(ctx, cfg.Redis.URL, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize RabbitMQ publisher
	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	// Initialize repository and status service
	jobRepo := postgres.NewPostgresJobRepository(dbPool)
	statusSvc := status.NewService(broker.NewRedisBroker(rdb, logger), cfg.Status.HealthTimeout, logger)

	// Initialize use cases
	submitUC := usecase.NewSubmitJobUsecase(jobRepo, pub, logger)
	getJobUC := usecase.NewGetJobUsecase(jobRepo, logger)

	// Initialize router
	router := handler.NewRouter(&handler.RouterDeps{
		SubmitUC:        submitUC,
		GetJobUC:        getJobUC,
		StatusSvc:       statusSvc,
		DBPool:          dbPool,
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
	})

	// Create HTTP server. WriteTimeout defaults to zero: a deadline would
	// sever long-lived SSE connections.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}

// connectRedis returns a Redis client, or nil when no URL is configured or
// the connection fails. Broker outages degrade the service, they never
// prevent startup.
func connectRedis(ctx context.Context, url string, logger *zap.Logger) *goredis.Client {
	if url == "" {
		logger.Warn("No Redis URL configured, status notifications disabled")
		return nil
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid Redis URL, status notifications disabled", zap.Error(err))
		return nil
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable at startup, status notifications degraded", zap.Error(err))
		// Keep the client: the broker recovers transparently once Redis is back.
		return rdb
	}

	logger.Info("Connected to Redis")
	return rdb
}
