// Package log configures the zerolog logger used by the commands.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config captures options for building a logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Command string    // command name attached to every entry
	JSON    bool      // emit JSON instead of console lines
}

// New builds a logger. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Command != "" {
		ctx = ctx.Str("cmd", cfg.Command)
	}
	return ctx.Logger()
}

// WithFile returns a child logger annotated with the file being processed.
func WithFile(l zerolog.Logger, file string) zerolog.Logger {
	return l.With().Str("file", file).Logger()
}
