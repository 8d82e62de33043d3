package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum level emitted; see logLevels for accepted names.
	Level string

	// Format is the output format (json, console, pretty).
	Format string

	// Output is the output destination (stdout, stderr).
	Output string

	// AddSource records the caller's file and line.
	AddSource bool

	// TimeFormat is the layout of the time field. Empty keeps zerolog's default.
	TimeFormat string
}

// DefaultLoggingConfig returns a LoggingConfig with sensible defaults.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger creates a new zerolog logger based on configuration.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return newLogger(cfg, out)
}

// newLogger builds the logger on top of out.
func newLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	return ctx.Logger().Level(level)
}

// logLevels maps accepted level names, including the "warning" alias, to zerolog levels.
var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// parseLevel converts a level name to a zerolog.Level. Unknown names fall back to info.
func parseLevel(level string) zerolog.Level {
	if l, ok := logLevels[strings.ToLower(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// ValidLogLevel reports whether level is a recognized level name.
func ValidLogLevel(level string) bool {
	_, ok := logLevels[strings.ToLower(level)]
	return ok
}

// WithComponent tags a logger with the emitting component.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithRequestContext adds the request correlation fields to a logger.
func WithRequestContext(logger zerolog.Logger, requestID, route string) zerolog.Logger {
	return logger.With().
		Str("request_id", requestID).
		Str("route", route).
		Logger()
}

// WithQueryContext adds the search query and year bounds to a logger.
// Unset bounds are logged as 0.
func WithQueryContext(logger zerolog.Logger, query string, fromYear, toYear int) zerolog.Logger {
	return logger.With().
		Str("query", query).
		Int("from_year", fromYear).
		Int("to_year", toYear).
		Logger()
}

// WithProviderContext adds upstream provider fields to a logger.
func WithProviderContext(logger zerolog.Logger, provider, endpoint string) zerolog.Logger {
	return logger.With().
		Str("provider", provider).
		Str("endpoint", endpoint).
		Logger()
}
