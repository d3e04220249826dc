// ABOUTME: Process logger setup
// ABOUTME: Configures zerolog level, console or JSON output and the global logger
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects log level, format and destinations
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	File   string // optional log file
	Stdout bool   // also write to stdout; off while the TUI owns the terminal
}

// Setup builds the process logger and installs it as log.Logger.
// The returned closer releases the log file.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Stdout {
		writers = append(writers, formatWriter(opts.Format, os.Stdout, false))
	}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, formatWriter(opts.Format, f, true))
		closer = f
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := New(w, level)
	log.Logger = logger
	return logger, closer, nil
}

// New creates a timestamped logger writing to w
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(level)
}

func formatWriter(format string, w io.Writer, noColor bool) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.Kitchen}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
