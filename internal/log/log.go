// Package log builds the zerolog loggers used across the application.
package log

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
)

// Version is stamped into every log line; overridden at build time.
var Version = "dev"

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

func newBaseLogger() zerolog.Logger {
	return zerolog.
		New(io.Discard).
		With().
		Dict("app", zerolog.Dict().Str("version", Version)).
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)
}

// NewPretty returns a logger writing colourized, indented JSON to w.
func NewPretty(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(newPrettyWriter(w))
}

// NewPacked returns a logger writing one JSON object per line to w.
func NewPacked(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(w)
}

// Options selects the sink and encoding of the application logger.
type Options struct {
	Level  string // zerolog level name
	Format string // "pretty" or "json"
	File   string // empty logs to stderr
}

// Open builds the application logger. The returned closer releases the log
// file, if any.
func Open(opts Options) (zerolog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w, closer = f, f
	}

	logger := NewPacked(w)
	if opts.Format == "pretty" {
		logger = NewPretty(w)
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level), closer, nil
}

func newPrettyWriter(out io.Writer) prettyWriter {
	return prettyWriter{out}
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}

// Panic attaches a recovered value and the stack that produced it.
func Panic(thing any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		dict := zerolog.Dict().Any("content", thing)
		stack := debug.Stack()
		lines := bytes.Split(stack, []byte("\n"))
		if len(lines) > 9 {
			lines = lines[9:]
		}
		dict.Bytes("stack_traces", bytes.Join(lines, []byte("\n")))
		e.Dict("panic", dict)
	}
}
