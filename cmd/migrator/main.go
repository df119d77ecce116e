package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"students/internal/platform/config"
	"students/internal/platform/logger"
	"students/internal/platform/migration"
)

func main() {
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("path", "", "migrations source URL (default: embedded files for DB_DRIVER)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		printUsage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Config{
		Level:     logger.Level(cfg.App.LogLevel),
		Format:    logger.Format(cfg.App.LogFormat),
		Output:    os.Stderr,
		Component: "migrator",
	})

	migrationsPath := *path
	if migrationsPath == "" {
		migrationsPath = cfg.App.MigrationsPath
	}
	runner, err := migration.New(migration.Config{
		Driver:         cfg.Database.Driver,
		DatabaseURL:    cfg.Database.MigrationURL(),
		MigrationsPath: migrationsPath,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close migration runner", "error", err)
		}
	}()

	return execute(runner, rest, stdout)
}

type migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Version() (uint, bool, error)
}

func execute(m migrator, args []string, stdout io.Writer) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  migrator [--path file://migrations/postgres] up")
	fmt.Fprintln(os.Stderr, "  migrator down")
	fmt.Fprintln(os.Stderr, "  migrator version")
	fmt.Fprintln(os.Stderr, "  migrator force N")
}
