package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-dose-reminder/internal/config"
	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/handler"
	"github.com/KasumiMercury/primind-dose-reminder/internal/health"
	"github.com/KasumiMercury/primind-dose-reminder/internal/infra/deliveryrecorder"
	"github.com/KasumiMercury/primind-dose-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/middleware"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/delivery"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/dosestatus"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/lifecycle"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/materialize"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
)

// Version and Revision are set via ldflags at build time
var (
	Version  = "dev"
	Revision = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	scheduleMetrics, err := metrics.NewScheduleMetrics()
	if err != nil {
		slog.Error("failed to initialize schedule metrics", slog.String("error", err.Error()))
		return 1
	}

	deliveryMetrics, err := metrics.NewDeliveryMetrics()
	if err != nil {
		slog.Error("failed to initialize delivery metrics", slog.String("error", err.Error()))
		return 1
	}

	resultRecorder, err := deliveryrecorder.NewRecorder(ctx, deliveryrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize delivery result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close delivery result recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect database",
			slog.String("event", "postgres.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to access database pool", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := repository.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database",
			slog.String("event", "postgres.migrate.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	slog.Info("database connected")

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.TLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	clock := domain.SystemClock{}
	store := repository.NewStore(db)
	ledger := repository.NewDispatchLedger(redisClient, cfg.Redis.DispatchTTL)
	transport, maxBatch := initPushTransport(cfg.Push)

	settingsService := settings.NewService(store, clock, cfg.DefaultTimezone)
	materializer := materialize.NewService(store, settingsService, clock, materialize.Config{
		HorizonDays: cfg.Scheduler.HorizonDays,
		PerSlotCap:  cfg.Scheduler.PerSlotCap,
	}, scheduleMetrics)
	lifecycleService := lifecycle.NewService(store, materializer, clock, scheduleMetrics)
	resolver := dosestatus.NewResolver(store, settingsService, clock)
	sweeper := delivery.NewSweeper(store, settingsService, transport, ledger, resultRecorder, clock, delivery.Config{
		Interval:             cfg.Scheduler.SweepInterval,
		BatchLimit:           cfg.Scheduler.SweepBatchLimit,
		RecipientConcurrency: cfg.Scheduler.RecipientConcurrency,
		MaxBatch:             maxBatch,
		SweepTimeout:         cfg.Scheduler.SweepTimeout,
	}, deliveryMetrics)

	handlers := &handler.Handlers{
		Medication:   handler.NewMedicationHandler(lifecycleService),
		Slot:         handler.NewSlotHandler(lifecycleService, resolver),
		Notification: handler.NewNotificationHandler(lifecycleService, sweeper),
		User:         handler.NewUserHandler(settingsService, store, clock),
	}

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      moduleName,
		TracerName:  "github.com/KasumiMercury/primind-dose-reminder/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, sqlDB, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	handlers.Register(r.Group("/api/v1"))

	var workers sync.WaitGroup
	if !cfg.Scheduler.Disabled {
		sweeper.Trigger()
		workers.Go(func() {
			sweeper.Start(ctx)
		})
	} else {
		slog.Warn("background delivery sweeper disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Duration("sweep_interval", cfg.Scheduler.SweepInterval),
			slog.Int("horizon_days", cfg.Scheduler.HorizonDays),
			slog.String("default_timezone", cfg.DefaultTimezone),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}
		workers.Wait()

		if err := resultRecorder.Flush(shutdownCtx); err != nil {
			slog.Warn("failed to flush delivery results", slog.String("error", err.Error()))
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		cancel()
		workers.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
