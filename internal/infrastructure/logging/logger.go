package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/genvis/genvis-core/internal/infrastructure/config"
)

// serviceName is attached to every record so multi-service log
// pipelines can tell camera cores apart from other emitters.
const serviceName = "genvis"

// Logger wraps slog.Logger for the daemon. Every record carries the
// service name and build version; subsystems derive their own logger
// with Component so records are filterable per concern.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging section of the configuration.
//
// Format selects text (development) or JSON (default, production)
// handlers; output selects stdout (default) or stderr. Unknown level
// strings fall back to info rather than failing startup — a camera
// node must come up even with a typo in its logging config.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Build version for the default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel converts a config level string to slog.Level.
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	camLog := logger.With("camera", "cam-001")
//	camLog.Info("probe ok") // Includes camera=cam-001
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a Logger tagged for one subsystem (poller, mqtt,
// api, ...). This is the conventional way subsystem loggers are built
// in the daemon.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default creates a logger for use before configuration is loaded:
// JSON to stdout at info level. Replace it with New as soon as the
// config is available.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
