package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hardcorebadger/push-api/internal/config"
	"github.com/hardcorebadger/push-api/internal/push"
	"github.com/hardcorebadger/push-api/internal/queue"
	"github.com/hardcorebadger/push-api/internal/repository"
	"github.com/hardcorebadger/push-api/internal/worker"
	"github.com/hardcorebadger/push-api/pkg/logger"
	"github.com/hardcorebadger/push-api/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.LogLevel)

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

	adapters := push.NewRegistry(cfg.APNSProduction)
	pool := worker.NewPool(jobQueue, adapters, store, logr, cfg.WorkerCount)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logr.Info("delivery workers starting", slog.Int("workers", cfg.WorkerCount))
	if err := pool.Run(ctx); err != nil {
		logr.Error("worker pool stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logr.Info("delivery workers exiting")
}
