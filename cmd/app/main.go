package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"students/internal/app/storage"
	"students/internal/infra/handler"
	"students/internal/platform/config"
	"students/internal/platform/logger"
	"students/internal/platform/metrics"
	"students/internal/platform/server"
	"students/internal/platform/telemetry"
	usecaseStudent "students/internal/usecase/student"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, "app")
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	if sentryEnabled {
		defer telemetry.Flush(2 * time.Second)
	}

	log := logger.New(logger.Config{
		Level:     logger.Level(cfg.App.LogLevel),
		Format:    logger.Format(cfg.App.LogFormat),
		Component: "app",
	})
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	store, err := storage.Open(ctx, cfg.Database, storage.Options{
		Migrate:        cfg.App.AutoMigrate,
		MigrationsPath: cfg.App.MigrationsPath,
	}, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	studentService := usecaseStudent.NewService(store.Students, log)

	middlewares := []func(http.Handler) http.Handler{
		server.SecurityHeaders(),
		server.RequestLogger(log),
		server.Recoverer(log),
	}
	var prometheusHandler http.Handler
	if cfg.App.EnableMetrics {
		httpMetrics := metrics.NewHTTPMetrics()
		middlewares = append(middlewares, httpMetrics.Middleware)
		prometheusHandler = httpMetrics.Handler()
	}

	router := handler.NewRouter(handler.RouterConfig{
		StudentHandler:     handler.NewStudentHandler(studentService, log),
		HealthHandler:      &handler.HealthHandler{DB: store},
		APIBasePath:        cfg.App.APIBasePath,
		Middlewares:        middlewares,
		PrometheusHandler:  prometheusHandler,
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
	})

	srv := server.New(server.Config{
		Address:         cfg.Server.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)

	return srv.Run(ctx)
}
