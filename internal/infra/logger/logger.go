package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger.
// format is "console" for human-readable output or "json" for JSON lines.
func Init(level, format string) error {
	return InitWithWriter(level, format, os.Stderr)
}

// InitWithWriter is Init with an explicit output
func InitWithWriter(level, format string, out io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case "json":
	default:
		return fmt.Errorf("invalid log format '%s'", format)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// For returns a child of the global logger tagged with a component
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
