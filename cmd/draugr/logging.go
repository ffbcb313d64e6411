// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// newCommandLogger creates the logger used while no terminal interface
// is running: text on a terminal, JSON when stderr is redirected.
func newCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// openFileLogHandler creates a slog.JSONHandler appending to path.
// The returned function closes the file.
func openFileLogHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}

// parseLevel maps a validated configuration level name to a slog level.
func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// colorProfile maps a configured color name to a termenv profile. The
// second result is false for "auto", which keeps the detected profile.
func colorProfile(name string) (termenv.Profile, bool) {
	switch name {
	case "ascii":
		return termenv.Ascii, true
	case "ansi":
		return termenv.ANSI, true
	case "ansi256":
		return termenv.ANSI256, true
	case "truecolor":
		return termenv.TrueColor, true
	default:
		return termenv.Ascii, false
	}
}

func applyColorProfile(name string) {
	if profile, ok := colorProfile(name); ok {
		lipgloss.SetColorProfile(profile)
	}
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
