// Package logger builds the gateway's zerolog logger and routes the standard
// library's log output through it, so every line the process writes is JSON.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how New builds a logger.
type Options struct {
	// Level is the minimum level: trace, debug, info, warn, error. Empty or
	// unknown values mean info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every line as "service" when non-empty.
	Service string
}

// New builds a logger from opts. It does not touch process-wide state; see
// Install for that.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).
		Level(parseLevel(opts.Level)).
		With().
		Timestamp().
		Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Install makes l the process default: it sets zerolog's global level and
// context fallback, and redirects the standard log package into l.
func Install(l zerolog.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(l.GetLevel())
	zerolog.DefaultContextLogger = &l

	stdlog.SetFlags(0)
	stdlog.SetOutput(l.With().Str("source", "stdlog").Logger())
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// StdLogger adapts l for APIs that only accept *log.Logger, such as
// http.Server.ErrorLog.
func StdLogger(l zerolog.Logger, source string) *stdlog.Logger {
	return stdlog.New(l.With().Str("source", source).Logger(), "", 0)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
