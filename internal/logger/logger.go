// Package logger builds the slog.Logger used by the phonebook binaries.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Options selects the log level, destination and format.
type Options struct {
	Level  string // debug, info, warn or error; empty means info.
	File   string // append logs to this file; empty or "-" means stderr.
	Format string // text or json; empty means text.

	// Output replaces stderr when File is empty. Colour is enabled only when
	// the output is a terminal.
	Output io.Writer

	// LevelVar, if set, receives the parsed level and backs the handler, so
	// the level can be changed after New returns.
	LevelVar *slog.LevelVar
}

// ParseLevel parses one of the Level option values.
func ParseLevel(s string) (slog.Level, error) {
	lvl, ok := level(s)
	if !ok {
		return lvl, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

func level(option string) (slog.Level, bool) {
	switch strings.ToLower(option) {
	case "", "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a logger for options and a function that releases its log
// file, if one was opened. Invalid options never fail: the bad field is
// reset to its default and a warning is logged with the result.
func New(options Options) (*slog.Logger, func() error) {
	lvl, ok := level(options.Level)
	if !ok {
		bad := options.Level
		options.Level = ""
		logger, closeFn := New(options)
		logger.Warn("could not parse logger level", "level", bad)
		return logger, closeFn
	}

	var output io.Writer
	var terminal bool
	closeFn := func() error { return nil }
	switch options.File {
	case "", "-":
		output = options.Output
		if output == nil {
			output = os.Stderr
		}
		if f, ok := output.(*os.File); ok {
			terminal = isatty.IsTerminal(f.Fd())
			output = colorable.NewColorable(f)
		}
	case os.DevNull:
		return slog.New(slog.DiscardHandler), closeFn
	default:
		f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			options.File = ""
			logger, closeFn := New(options)
			logger.Warn("could not open logger file", "err", err)
			return logger, closeFn
		}
		output = f
		closeFn = sync.OnceValue(f.Close)
	}

	var leveler slog.Leveler = lvl
	if options.LevelVar != nil {
		options.LevelVar.Set(lvl)
		leveler = options.LevelVar
	}
	return NewWithWriter(output, leveler, options.Format, terminal), closeFn
}

// NewWithWriter builds a logger writing to w. Colour is used only for the
// text format when color is true.
func NewWithWriter(w io.Writer, lvl slog.Leveler, format string, color bool) *slog.Logger {
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	case "", "text":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05.000",
			NoColor:    !color,
		}))
	default:
		logger := NewWithWriter(w, lvl, "text", color)
		logger.Warn("could not parse logger format", "format", format)
		return logger
	}
}
