package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/hardcorebadger/push-api/internal/handlers"
	"github.com/hardcorebadger/push-api/internal/middleware"
	"github.com/hardcorebadger/push-api/internal/repository"
)

// Options carries the middleware knobs the route table needs.
type Options struct {
	AdminSecret     string
	RateLimit       int
	RateLimitWindow time.Duration
}

// SetupRoutes configures the routes for the application.
func SetupRoutes(
	router *gin.Engine,
	store *repository.Store,
	projectCache *repository.ProjectCache,
	redisClient *redis.Client,
	deviceHandler *handlers.DeviceHandler,
	messageHandler *handlers.MessageHandler,
	preferenceHandler *handlers.PreferenceHandler,
	adminHandler *handlers.AdminHandler,
	opts Options,
) {
	router.Use(middleware.CorrelationIDMiddleware())

	// Initialize circuit breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{})

	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(store, projectCache))
	v1.Use(middleware.RateLimitMiddleware(redisClient, opts.RateLimit, opts.RateLimitWindow))
	v1.Use(middleware.CircuitBreakerMiddleware(cb))
	{
		devices := v1.Group("/devices")
		{
			devices.GET("/:user_id", deviceHandler.List)
			devices.PUT("/:user_id/:device_id", deviceHandler.Register)
			devices.GET("/:user_id/:device_id", deviceHandler.Get)
			devices.DELETE("/:user_id/:device_id", deviceHandler.Delete)
		}

		messages := v1.Group("/messages")
		{
			messages.POST("", messageHandler.Send)
			messages.GET("", messageHandler.List)
			messages.GET("/:id", messageHandler.Get)
			messages.GET("/:id/status", messageHandler.Status)
		}

		preferences := v1.Group("/preferences")
		{
			preferences.GET("/:user_id", preferenceHandler.GetUser)
			preferences.PUT("/:user_id", preferenceHandler.UpdateUser)
			preferences.GET("/:user_id/:device_id", preferenceHandler.GetDevice)
			preferences.PUT("/:user_id/:device_id", preferenceHandler.UpdateDevice)
		}
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(opts.AdminSecret))
	{
		admin.POST("/projects", adminHandler.CreateProject)
		admin.GET("/projects/:id/credentials", adminHandler.GetCredentials)
		admin.PUT("/projects/:id/credentials", adminHandler.SetCredentials)
	}

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)
}
