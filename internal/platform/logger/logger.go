package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logger configuration
type Config struct {
	Level  Level
	Format Format
	// Output defaults to stdout. The CLIs log to stderr so stdout stays machine-readable.
	Output io.Writer
	// Component is attached to every record when set (e.g. "app", "migrator").
	Component string
}

// New creates a new structured logger with the given configuration
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(createHandler(out, cfg.Format, parseLevel(cfg.Level)))
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return logger
}

// parseLevel converts string log level to slog.Level
func parseLevel(level Level) slog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func createHandler(out io.Writer, format Format, level slog.Level) slog.Handler {
	addSource := level == slog.LevelDebug
	if format == FormatJSON {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     level,
			AddSource: addSource,
		})
	}
	// tint for anything else, including an empty format
	return tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		AddSource:  addSource,
		NoColor:    out != os.Stdout && out != os.Stderr,
	})
}

// SetDefault sets the default logger for the application
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
