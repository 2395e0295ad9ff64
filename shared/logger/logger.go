package logger

import (
	"log/slog"
	"os"
)

var root *slog.Logger

// Init configures the process-wide logger. Development gets a human-readable
// text handler at debug level, everything else structured JSON at info.
func Init(env string, debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if debug || env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	root = slog.New(handler)
	slog.SetDefault(root)
}

// Default returns the configured logger, falling back to a text handler when
// Init has not run (tests, tools).
func Default() *slog.Logger {
	if root == nil {
		root = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return root
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}
