package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"students/internal/app/storage"
	"students/internal/platform/config"
	"students/internal/platform/logger"
	"students/internal/platform/telemetry"
	usecaseStudent "students/internal/usecase/student"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout); err != nil {
		slog.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	switch args[1] {
	case "students":
		return runStudents(ctx, args[2:], stdout, connect)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  admin students list")
	fmt.Fprintln(os.Stderr, "  admin students import --file students.json --yes")
	fmt.Fprintln(os.Stderr, "  admin students delete --id 10 --yes")
}

// connectFunc builds the student service; tests swap it for an in-memory store.
type connectFunc func(ctx context.Context) (*usecaseStudent.Service, func(), error)

func connect(ctx context.Context) (*usecaseStudent.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, "admin")
	if err != nil {
		return nil, nil, fmt.Errorf("init sentry: %w", err)
	}

	log := logger.New(logger.Config{
		Level:     logger.Level(cfg.App.LogLevel),
		Format:    logger.Format(cfg.App.LogFormat),
		Output:    os.Stderr,
		Component: "admin",
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
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	closeAll := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close storage", "error", err)
		}
		if sentryEnabled {
			telemetry.Flush(2 * time.Second)
		}
	}
	return usecaseStudent.NewService(store.Students, log), closeAll, nil
}
