// Package logging provides zerolog setup and sensitive data filtering.
// Log output goes to the console and optionally to a rotating file; values
// that look like credentials are redacted before they reach either sink.
package logging

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/scrumpilot/internal/config"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting
// sensitive values. These match common API key and token formats.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// OpenAI-style API keys (sk-...)
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// Atlassian API tokens (ATATT...)
	regexp.MustCompile(`ATATT[a-zA-Z0-9_=-]{20,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_.-]{20,}`),

	// Generic API keys (api_key, apikey, api-key followed by value)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),
}

// redactWriter wraps an io.Writer and redacts sensitive values in every
// write. Log lines are small, so scanning each write is cheap.
type redactWriter struct {
	w io.Writer
}

// Write redacts sensitive patterns and forwards to the wrapped writer.
func (r redactWriter) Write(p []byte) (int, error) {
	redacted := Redact(string(p))
	if _, err := r.w.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	// Report the original length so zerolog does not treat the shorter
	// redacted write as a partial write.
	return len(p), nil
}

// Redact replaces sensitive values in s with RedactedValue.
func Redact(s string) string {
	for _, p := range sensitivePatterns {
		s = p.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// New builds the application logger from the logging configuration.
// Console output is human-readable; file output (when configured) is JSON
// rotated by lumberjack.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	var sink io.Writer = console
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		sink = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(redactWriter{w: sink}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
