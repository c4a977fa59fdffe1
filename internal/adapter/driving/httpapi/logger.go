package httpapi

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/diillson/cloud-snitch-map/pkg/console"
)

// NewLogger builds the server's JSON logger. A nil out writes to stdout.
func NewLogger(out io.Writer, level string) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(out).
		Level(console.ParseLevel(level)).
		With().Timestamp().Str("service", "cloud-snitch").
		Logger()
}
