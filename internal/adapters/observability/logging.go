package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger tagged with the binary name.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env, service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if env == "dev" || env == "development" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", service).Logger()
}
