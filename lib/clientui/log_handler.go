// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
)

// LogHandler is a slog.Handler that prints records into the main
// transcript: PrintError for slog.LevelError and above, PrintWarning
// below. Records below the handler's level are dropped, as are records
// that arrive while the request queue is full; logging never blocks.
//
// Create the handler before the UI so it can be passed to every
// component, then call Attach. Records handled before Attach are
// dropped. Handlers derived through WithAttrs and WithGroup share the
// attachment.
type LogHandler struct {
	level  slog.Level
	target *atomic.Pointer[UI]
	attrs  []slog.Attr
	group  string
}

// NewLogHandler creates a handler for records at or above level.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{level: level, target: &atomic.Pointer[UI]{}}
}

// Attach starts delivering records to ui. Safe to call from any
// goroutine.
func (handler *LogHandler) Attach(ui *UI) {
	handler.target.Store(ui)
}

func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)".
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	ui := handler.target.Load()
	if ui == nil {
		return nil
	}

	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, attr.String())
	}
	record.Attrs(func(attr slog.Attr) bool {
		if handler.group != "" {
			attr.Key = handler.group + attr.Key
		}
		parts = append(parts, attr.String())
		return true
	})
	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	var request Request = PrintWarning{Message: summary}
	if record.Level >= slog.LevelError {
		request = PrintError{Message: summary}
	}
	select {
	case ui.requests <- request:
	default:
	}
	return nil
}

func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	for _, attr := range attrs {
		attr.Key = handler.group + attr.Key
		derived.attrs = append(derived.attrs, attr)
	}
	return &derived
}

func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.group = handler.group + name + "."
	return &derived
}
