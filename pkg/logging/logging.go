// Package logging configures log/slog for splitledger.
//
// The console format uses colored tint output; the json format writes one
// JSON object per line for log shippers.
//
//	logging.Setup("debug", "console")
//	logging.Setup(logging.LevelFromEnv(), "json")
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Setup installs the default logger writing to stderr.
func Setup(level, format string) error {
	logger, err := New(os.Stderr, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// New builds a logger for w without installing it.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "", FormatConsole:
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  lvl == slog.LevelDebug,
		})), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// LevelFromEnv returns the LOG_LEVEL environment variable.
func LevelFromEnv() string {
	return os.Getenv("LOG_LEVEL")
}
