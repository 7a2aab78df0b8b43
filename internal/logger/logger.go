// Package logger handles logging for the call recorder.
//
// This is a thin wrapper around zerolog. Each component derives a
// sublogger with New and a "module" field so logs can be filtered.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger is a logger instance. It is compatible with the interface
// from zerolog.
type Logger struct {
	zerolog.Logger
}

// Configuration describes the logger output.
type Configuration struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string
	// Console selects the human readable writer instead of JSON.
	Console bool
}

// DefaultConfiguration logs at info level, in console format when
// stderr is a terminal.
func DefaultConfiguration() Configuration {
	return Configuration{
		Level:   "info",
		Console: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// New creates a root logger writing to w.
func New(config Configuration, w io.Writer) (Logger, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return Logger{}, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
		level = parsed
	}
	if config.Console {
		w = zerolog.ConsoleWriter{Out: w}
	}
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return Logger{l}, nil
}

// Nop returns a logger discarding everything.
func Nop() Logger {
	return Logger{zerolog.Nop()}
}

// New creates a sublogger tagged with the provided module name.
func (l Logger) New(module string) Logger {
	return Logger{l.With().Str("module", module).Logger()}
}
