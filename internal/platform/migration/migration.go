package migration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"students/migrations"
)

// Config holds migration configuration.
type Config struct {
	Driver         string // "postgres" or "sqlite"
	DatabaseURL    string // postgres://... or sqlite3://path
	MigrationsPath string // optional override (e.g. "file://migrations/postgres"); embedded files otherwise
	Logger         *slog.Logger
}

// Runner handles database migrations.
type Runner struct {
	migrate *migrate.Migrate
	logger  *slog.Logger
}

// New creates a new migration runner.
func New(cfg Config) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		m   *migrate.Migrate
		err error
	)
	if cfg.MigrationsPath != "" {
		m, err = migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	} else {
		fsys, fsErr := migrations.FS(cfg.Driver)
		if fsErr != nil {
			return nil, fsErr
		}
		src, srcErr := iofs.New(fsys, ".")
		if srcErr != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, cfg.DatabaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Runner{
		migrate: m,
		logger:  logger,
	}, nil
}

// Up runs all available migrations.
func (r *Runner) Up() error {
	if err := r.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		r.logger.Info("no migrations applied")
	} else {
		r.logger.Info("migrations applied successfully", "version", version, "dirty", dirty)
	}
	return nil
}

// Down rolls back one migration.
func (r *Runner) Down() error {
	if err := r.migrate.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Force sets the migration version without running migrations.
func (r *Runner) Force(version int) error {
	if err := r.migrate.Force(version); err != nil {
		return fmt.Errorf("migration force failed: %w", err)
	}
	return nil
}

// Version returns the current migration version; 0 means nothing applied.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Close closes the migration runner.
func (r *Runner) Close() error {
	srcErr, dbErr := r.migrate.Close()
	if srcErr != nil {
		return fmt.Errorf("failed to close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}

// SQLiteURL builds the golang-migrate URL for a sqlite database file.
func SQLiteURL(path string) string {
	return "sqlite3://" + path
}
