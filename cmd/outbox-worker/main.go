package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/internal/worker"
	"github.com/prohmpiriya/event-ticketing/pkg/config"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
)

const serviceName = "outbox-worker"

// The outbox worker relays committed domain events to Kafka. Any number of
// replicas may run; rows are claimed with SKIP LOCKED.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := "info"
	if cfg.App.Debug {
		level = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       level,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateDatabase(); err != nil {
		appLog.Fatal("Invalid database config", zap.Error(err))
	}
	dbCfg := database.ConfigFrom(cfg.Database, false)
	dbCfg.MaxConns = 5
	dbCfg.MinConns = 1

	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	publisher, err := worker.NewPublisher(ctx, cfg, serviceName)
	if err != nil {
		appLog.Fatal("Failed to initialize outbox publisher", zap.Error(err))
	}
	defer publisher.Close()
	if !cfg.Kafka.Enabled {
		appLog.Warn("Kafka disabled; outbox messages will only be logged")
	}

	outboxRepo := repository.NewPostgresOutboxRepository(db.Pool(), cfg.Kafka.EventsTopic)
	w := worker.NewOutboxWorker(outboxRepo, publisher.Producer, publisher.DLQ, worker.OutboxConfigFrom(cfg.Outbox))
	if err := w.Start(ctx); err != nil {
		appLog.Fatal("Failed to start outbox worker", zap.Error(err))
	}

	<-ctx.Done()
	appLog.Info("Shutting down outbox worker...")
	w.Stop()
}
