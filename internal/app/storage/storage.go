// Package storage opens the configured student store for the commands.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"students/internal/domain/repository"
	"students/internal/infra/postgres"
	"students/internal/infra/sqlite"
	"students/internal/platform/config"
	"students/internal/platform/database"
	"students/internal/platform/migration"
)

// Storage bundles the repository with the connection that backs it.
type Storage struct {
	Students repository.StudentRepository

	health func(ctx context.Context) error
	close  func() error
}

// Options controls Open.
type Options struct {
	Migrate        bool
	MigrationsPath string
}

// Open connects to the configured driver, optionally migrating the schema first.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts Options, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Migrate {
		if err := Migrate(cfg, opts.MigrationsPath, logger); err != nil {
			return nil, err
		}
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Students: postgres.NewStudentRepository(db.Pool),
			health:   db.HealthCheck,
			close: func() error {
				db.Close()
				return nil
			},
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite database opened", "path", cfg.SQLitePath)
		return &Storage{
			Students: sqlite.NewStudentRepository(db),
			health:   pinger(db),
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate applies all pending migrations for the configured driver.
func Migrate(cfg config.DatabaseConfig, migrationsPath string, logger *slog.Logger) error {
	runner, err := migration.New(migration.Config{
		Driver:         cfg.Driver,
		DatabaseURL:    cfg.MigrationURL(),
		MigrationsPath: migrationsPath,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := runner.Close(); cerr != nil {
			logger.Warn("failed to close migration runner", "error", cerr)
		}
	}()
	return runner.Up()
}

// HealthCheck reports whether the store is reachable.
func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.health(ctx)
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	return s.close()
}

func pinger(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
