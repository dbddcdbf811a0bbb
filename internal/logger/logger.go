// Package logger wraps log/slog with coldroute's conventions: JSON by
// default, optional rotation via lumberjack, and a package-level Log handle
// mirrored from the donor's logging package.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"coldroute/internal/config"
)

// Log is the process-wide logger. The package's init sets it to an
// info-level JSON logger on stdout; Init/InitWithConfig replace it.
var Log *slog.Logger

// Init configures Log with JSON output to stdout at the given level.
func Init(level string) {
	InitWithConfig(config.LogConfig{Level: level, Format: "json", Output: "stdout"})
}

// InitWithConfig configures Log from a full LogConfig, including optional
// file rotation.
func InitWithConfig(cfg config.LogConfig) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer
	switch cfg.Output {
	case "stderr":
		writer = os.Stderr
	case "file":
		path := cfg.FilePath
		if path == "" {
			path = "logs/coldroute.log"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			writer = os.Stdout
		} else {
			writer = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
		}
	default:
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	Log = slog.New(handler)
}

// WithJob returns a logger scoped to one job id, used throughout the
// orchestrator so every log line for a job can be grepped together.
func WithJob(jobID string) *slog.Logger {
	return Log.With("job_id", jobID)
}

func init() {
	// A safe default so packages that log at import time (tests, early
	// bootstrap failures) never dereference a nil logger.
	Init("info")
}
