package util

import (
	"log/slog"
	"os"
	"strings"
)

// InitSlog configures slog based on the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error. Passing verbose raises the
// effective level to Debug regardless of LOG_LEVEL, for the duration of
// the process — the --verbose flag's effect on logging.
func InitSlog(verbose bool) {
	_, envSet := os.LookupEnv("LOG_LEVEL")
	if !envSet && !verbose {
		return
	}

	level := slog.LevelInfo
	if envSet {
		switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}
