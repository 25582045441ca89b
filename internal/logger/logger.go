package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. Production emits JSON lines; every other
// environment gets the human-readable console writer.
func New(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "zare-api").Logger()
}

// Nop discards everything; handy in tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
