package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the process logger. While termbox owns the terminal nothing may be written
// to stdout or stderr, so logs go to path when one is given and are discarded otherwise. A
// path of "-" logs to stderr. The returned closer is nil when nothing was opened.
func newLogger(level, path string) (zerolog.Logger, io.Closer, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if path == "" {
		return zerolog.New(io.Discard).Level(zerolog.Disabled), nil, nil
	}
	zerolog.DurationFieldUnit = time.Millisecond
	if path == "-" {
		return consoleLogger(os.Stderr, lvl, false), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return consoleLogger(f, lvl, true), f, nil
}

func consoleLogger(w io.Writer, lvl zerolog.Level, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("component", "simulator").Logger()
}

func parseLogLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}
