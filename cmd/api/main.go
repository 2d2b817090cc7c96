package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/di"
	"github.com/prohmpiriya/event-ticketing/internal/worker"
	"github.com/prohmpiriya/event-ticketing/migrations"
	"github.com/prohmpiriya/event-ticketing/pkg/config"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/redis"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

const serviceName = "ticketing-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
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
	appLog.Info("Starting ticketing API", zap.String("version", cfg.App.Version), zap.String("env", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if cfg.OTel.Enabled {
		appLog.Info("Telemetry initialized", zap.String("collector", cfg.OTel.CollectorAddr))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize database connection
	if err := cfg.ValidateDatabase(); err != nil {
		appLog.Fatal("Invalid database config", zap.Error(err))
	}
	dbCfg := database.ConfigFrom(cfg.Database, cfg.OTel.Enabled)
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected", zap.Int32("max_conns", dbCfg.MaxConns))

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db.Pool(), migrations.FS)
		if err != nil {
			appLog.Fatal("Database migration failed", zap.Error(err))
		}
		appLog.Info("Database migrations applied", zap.Int("count", len(applied)))
	}

	// Initialize Redis connection (optional - caching disabled if it fails)
	var redisClient *redis.Client
	redisCfg := redis.ConfigFrom(cfg.Redis)
	redisClient, err = redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn("Redis connection failed (caching disabled)", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected", zap.String("addr", redisCfg.Addr()))
	}

	// Build dependency injection container
	jwtCfg := middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.AccessTokenTTL,
	}
	uploads := afero.NewOsFs()
	container, err := di.NewContainer(&di.ContainerConfig{
		DB:                  db,
		Redis:               redisClient,
		EventsTopic:         cfg.Kafka.EventsTopic,
		JWT:                 jwtCfg,
		Location:            cfg.Location(),
		TicketIssuer:        cfg.App.Name,
		UploadFS:            uploads,
		UploadDir:           cfg.Upload.Dir,
		UploadMaxSize:       cfg.Upload.MaxSizeBytes,
		ImageBase:           cfg.Upload.PublicPath,
		ZoneAvailabilityTTL: cfg.Cache.ZoneAvailabilityTTL,
		EventListTTL:        cfg.Cache.EventListTTL,
	})
	if err != nil {
		appLog.Fatal("Failed to build container", zap.Error(err))
	}

	// Background workers
	if redisClient != nil {
		zoneSync := worker.NewZoneSyncWorker(container.ZoneSyncer, cfg.Cache.ZoneSyncInterval)
		zoneSync.Start(ctx)
		defer zoneSync.Stop()
	}

	if cfg.Outbox.Embedded {
		publisher, err := worker.NewPublisher(ctx, cfg, serviceName)
		if err != nil {
			appLog.Fatal("Failed to initialize outbox publisher", zap.Error(err))
		}
		defer publisher.Close()

		outbox := worker.NewOutboxWorker(container.OutboxRepo, publisher.Producer, publisher.DLQ, worker.OutboxConfigFrom(cfg.Outbox))
		if err := outbox.Start(ctx); err != nil {
			appLog.Fatal("Failed to start outbox worker", zap.Error(err))
		}
		defer outbox.Stop()
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog, "/health", "/ready"))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowOrigins
	}
	router.Use(middleware.CORS(cors))

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(serviceName))
	}

	router.StaticFS(cfg.Upload.PublicPath, afero.NewHttpFs(uploads).Dir(cfg.Upload.Dir))

	routes := container.Routes(jwtCfg)
	if redisClient != nil {
		routes.Idempotency = middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient))
	}
	routes.Register(router)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.Info("Ticketing API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLog.Error("Server failed", zap.Error(err))
	}
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	appLog.Info("Server exited gracefully")
}
