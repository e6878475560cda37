// Package logging builds the console's zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/rs/zerolog"
)

// New returns a leveled logger tagged with the service name.
func New(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, cfg.LogLevel, cfg.OTELServiceName)
}

// NewWithWriter is New with an explicit sink, used by tests.
func NewWithWriter(w io.Writer, level, service string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
