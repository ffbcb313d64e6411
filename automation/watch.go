// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Misza13/draugr/lib/clock"
)

// DefaultReloadDelay is how long a watched script must stay unchanged
// before it is run again.
const DefaultReloadDelay = 250 * time.Millisecond

// RequestSink accepts automation requests. *Actor implements it.
type RequestSink interface {
	Requests() chan<- Request
	Done() <-chan struct{}
}

// Watcher re-runs a script file whenever it changes on disk.
type Watcher struct {
	path   string
	sink   RequestSink
	clock  clock.Clock
	delay  time.Duration
	logger *slog.Logger
}

// NewWatcher creates a Watcher that sends ExecuteFile{path} to sink
// after each burst of changes to path settles.
func NewWatcher(path string, sink RequestSink, c clock.Clock, logger *slog.Logger) *Watcher {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:   filepath.Clean(path),
		sink:   sink,
		clock:  c,
		delay:  DefaultReloadDelay,
		logger: logger.With("component", "script-watcher", "path", path),
	}
}

// Run watches until ctx is cancelled or the sink stops. The containing
// directory is watched rather than the file so editors that replace
// the file on save keep triggering reloads. Only a failure to start
// watching is returned; later watch errors are logged.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating script watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}
	w.logger.Info("watching script for changes")

	settled := make(chan struct{}, 1)
	var pending *clock.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.sink.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = w.clock.AfterFunc(w.delay, func() {
				select {
				case settled <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("script watch error", "error", err)

		case <-settled:
			w.logger.Info("script changed, reloading")
			select {
			case w.sink.Requests() <- ExecuteFile{Path: w.path}:
			case <-w.sink.Done():
				return nil
			case <-ctx.Done():
				return nil
			}
		}
	}
}
