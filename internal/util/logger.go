// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnvVar enables debug logging when set to any non-empty value.
const DebugEnvVar = "JSRUN_DEBUG"

var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger with appropriate log level
// Set JSRUN_DEBUG=1 environment variable to enable debug logging
func InitLogger() {
	InitLoggerTo(os.Stdout)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer) {
	level := slog.LevelInfo // Default: only show Info, Warn, Error

	if os.Getenv(DebugEnvVar) != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		// Remove timestamp and level for cleaner CLI output
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Debug logs a debug message (only shown when JSRUN_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
