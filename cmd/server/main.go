package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hardcorebadger/push-api/internal/config"
	"github.com/hardcorebadger/push-api/internal/dispatch"
	"github.com/hardcorebadger/push-api/internal/handlers"
	"github.com/hardcorebadger/push-api/internal/queue"
	"github.com/hardcorebadger/push-api/internal/repository"
	"github.com/hardcorebadger/push-api/internal/routes"
	"github.com/hardcorebadger/push-api/internal/services"
	"github.com/hardcorebadger/push-api/internal/vault"
	"github.com/hardcorebadger/push-api/pkg/logger"
	"github.com/hardcorebadger/push-api/pkg/metrics"
	"github.com/hardcorebadger/push-api/pkg/rabbitmq"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logr.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	store, err := repository.NewStore(db)
	if err != nil {
		logr.Error("failed to migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()
	projectCache := repository.NewProjectCache(redisClient, cfg.ProjectCacheTTL)

	metricsCollector := metrics.New()

	// Initialize RabbitMQ and the dispatch queue
	mqManager, err := rabbitmq.NewManager(cfg.RabbitMQURL, logr)
	if err != nil {
		logr.Error("failed to connect to RabbitMQ", slog.Any("error", err))
		os.Exit(1)
	}
	defer mqManager.Close()

	jobQueue, err := queue.NewAMQPQueue(mqManager, logr)
	if err != nil {
		logr.Error("failed to set up dispatch queue", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize the credential vault
	credentialVault, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		logr.Error("failed to initialize vault", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	dispatcher := dispatch.NewDispatcher(store, credentialVault, jobQueue, logr)
	idempotencyService := services.NewIdempotencyService(redisClient)

	// Initialize handlers
	deviceHandler := handlers.NewDeviceHandler(store)
	messageHandler := handlers.NewMessageHandler(store, dispatcher, idempotencyService, metricsCollector)
	preferenceHandler := handlers.NewPreferenceHandler(store)
	adminHandler := handlers.NewAdminHandler(store, credentialVault)

	// Initialize router
	router := gin.Default()
	router.Use(metricsCollector.GinMiddleware())
	router.GET("/metrics", gin.WrapH(metricsCollector.Handler()))

	// Setup routes
	routes.SetupRoutes(router, store, projectCache, redisClient,
		deviceHandler, messageHandler, preferenceHandler, adminHandler,
		routes.Options{
			AdminSecret:     cfg.AdminSecret,
			RateLimit:       cfg.RateLimit,
			RateLimitWindow: cfg.RateLimitWindow,
		})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("server listen failed", slog.Any("error", err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", slog.Any("error", err))
	}

	logr.Info("server exiting")
}
