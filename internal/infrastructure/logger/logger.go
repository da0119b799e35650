package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a new logger with specified level writing to stderr, so it
// does not interleave with command output on stdout
func New(level string) zerolog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a new logger with specified level and output
func NewWithWriter(level string, out io.Writer) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(parseLogLevel(level)).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

// parseLogLevel parses log level string to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
