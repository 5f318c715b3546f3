// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// ParseLevel converts a --log-level value to a slog level. It accepts
// slog's names plus the server's "warning" and "critical" spellings so
// the launcher and gunicorn can share one LOG_LEVEL value.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warning, error, or critical)", value)
}

// NewCommandLogger creates a structured logger for command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable
// output. When stderr is piped or redirected (container runtimes, CI),
// uses slog.JSONHandler for machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo).With("command", "run")
func NewCommandLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewLogger creates a logger writing to w, as text when human is true
// and as JSON otherwise.
func NewLogger(w io.Writer, level slog.Level, human bool) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if human {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
