package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/notes-api/internal/api"
	"github.com/dom/notes-api/internal/config"
	"github.com/dom/notes-api/internal/logger"
	"github.com/dom/notes-api/internal/repository/postgres"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/websocket"
	"github.com/dom/notes-api/internal/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	// Initialize database
	dbLogLevel := gormlogger.Warn
	if cfg.Environment == "production" {
		dbLogLevel = gormlogger.Error
	}
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	db, err := postgres.NewConnection(migrateCtx, cfg.DatabaseURL, dbLogLevel)
	cancelMigrate()
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, cfg.StoreTimeout)

	// Initialize WebSocket hub
	hub := websocket.NewHub(log)
	go hub.Run()

	// Initialize services
	services, err := service.NewServices(repos, cfg, hub)
	if err != nil {
		log.Error("failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize router
	router := api.NewRouter(services, hub, cfg, log, registry)

	// Background revocation cleanup
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	job := cleanup.NewRevocationCleanupJob(repos.RevokedToken, cfg.RevocationCleanupInterval, log)
	go func() {
		defer close(workerDone)
		job.Start(workerCtx)
	}()

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("environment", cfg.Environment),
			slog.String("algorithm", cfg.Algorithm),
			slog.Duration("token_ttl", cfg.AccessTokenTTL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	hub.Stop()
	stopWorker()
	<-workerDone

	if err := postgres.Close(db); err != nil {
		log.Error("failed to close database", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
