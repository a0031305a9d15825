package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/pscheid92/nano/internal/platform/correlation"
	slogmulti "github.com/samber/slog-multi"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// NewHandler builds the console handler plus one JSON handler per extra sink,
// fanned out and wrapped with correlation ID injection.
// format: "json" or "text" (defaults to "text")
func NewHandler(console io.Writer, level, format string, sinks ...io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(console, opts)
	} else {
		handler = slog.NewTextHandler(console, opts)
	}

	if len(sinks) > 0 {
		handlers := []slog.Handler{handler}
		for _, w := range sinks {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		}
		handler = slogmulti.Fanout(handlers...)
	}

	return correlation.NewHandler(handler)
}

// InitLogger initializes the global logger writing to stdout and any extra sinks.
func InitLogger(level, format string, sinks ...io.Writer) {
	Logger = slog.New(NewHandler(os.Stdout, level, format, sinks...))
	slog.SetDefault(Logger)
}

// OpenFileSink opens path for appending log records.
func OpenFileSink(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
