package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "tourassist-backend"

var (
	defaultLogger *slog.Logger
	debugMode     bool
)

// Init configures the process-wide logger and installs it as slog's default
func Init(cfg *Config) {
	if cfg == nil {
		cfg = NewConfigFromEnv()
	}
	defaultLogger = newLogger(cfg, openOutput(cfg))
	debugMode = strings.EqualFold(cfg.Level, "debug")
	slog.SetDefault(defaultLogger)
}

func newLogger(cfg *Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	return slog.New(h.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
	}))
}

// openOutput resolves the output target; file outputs rotate with compressed backups
func openOutput(cfg *Config) io.Writer {
	switch output := cfg.Output; {
	case output == "stderr":
		return os.Stderr
	case strings.HasPrefix(output, "file:"):
		rotation := cfg.Rotation.withDefaults()
		return &lumberjack.Logger{
			Filename:   strings.TrimPrefix(output, "file:"),
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   true,
		}
	default:
		return os.Stdout
	}
}

// GetLogger returns the default logger, initializing it from the environment if needed
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		Init(nil)
	}
	return defaultLogger
}

// NewModuleLogger returns a logger tagged with module and component
func NewModuleLogger(module, component string) *slog.Logger {
	return GetLogger().With(
		slog.String("module", module),
		slog.String("component", component),
	)
}

// FromContext returns logger enriched with the request-scoped attributes in ctx
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := AttrsFromContext(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return logger.With(args...)
}

// IsDebugMode reports whether the logger runs at debug level
func IsDebugMode() bool {
	return debugMode
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
