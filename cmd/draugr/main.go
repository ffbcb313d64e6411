// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// draugr is an interactive terminal client for MUDs and other
// line-oriented telnet services.
//
// It keeps one server connection, shows the server's output in a
// scrolling transcript above an input line, and runs Lua scripts that
// can connect, send commands, wait for output, and rearrange the
// screen. Configuration comes from an optional YAML file (--config or
// DRAUGR_CONFIG) overridden by flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Misza13/draugr/automation"
	"github.com/Misza13/draugr/connection"
	"github.com/Misza13/draugr/lib/clientui"
	"github.com/Misza13/draugr/lib/layout"
	"github.com/Misza13/draugr/lib/version"
	"github.com/Misza13/draugr/router"
	"github.com/Misza13/draugr/transport"
)

// shutdownGrace is how long the router may take to finish after the
// terminal interface exits before it is cancelled.
const shutdownGrace = 2 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger := newCommandLogger()
		var usage *usageError
		if errors.As(err, &usage) && usage.hint != "" {
			logger.Error(err.Error(), "hint", usage.hint)
		} else {
			logger.Error(err.Error())
		}
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, flagSet, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Println("draugr " + version.Full())
		return nil
	}
	if opts.help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(opts, flagSet)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return usageErrorf("draugr needs an interactive terminal").
			withHint("Run draugr directly in a terminal, without redirecting stdin or stdout.")
	}

	var startupLayout *layout.Node
	if cfg.Script.Layout != "" {
		node, err := layout.ReadFile(cfg.Script.Layout)
		if err != nil {
			return usageErrorf("loading layout: %w", err)
		}
		startupLayout = &node
	}

	applyColorProfile(cfg.Display.Color)

	uiHandler := clientui.NewLogHandler(slog.LevelError)
	handlers := fanoutHandler{uiHandler}
	if cfg.Log.File != "" {
		fileHandler, closeFile, err := openFileLogHandler(cfg.Log.File, parseLevel(cfg.Log.Level))
		if err != nil {
			return usageErrorf("cannot open log file %s: %w", cfg.Log.File, err)
		}
		defer closeFile()
		handlers = append(handlers, fileHandler)
	}
	logger := slog.New(handlers)

	ui := clientui.New(clientui.Options{
		HistoryCapacity: cfg.History.InputLines,
		Scrollback:      cfg.History.Scrollback,
		Welcome:         cfg.Display.Welcome,
	}, tea.WithAltScreen())
	uiHandler.Attach(ui)

	connectionActor := connection.New(
		connection.WithDialer(&transport.TCPDialer{Timeout: cfg.DialTimeout()}),
		connection.WithReadTimeout(cfg.ReadTimeout()),
		connection.WithLineTerminator(cfg.Connection.LineTerminator),
		connection.WithLogger(logger),
	)
	automationActor := automation.New(automation.WithLogger(logger))
	eventRouter := router.New(connectionActor, automationActor, ui,
		router.WithSecretMask(cfg.Display.SecretMask),
		router.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go connectionActor.Run(ctx)
	go automationActor.Run(ctx)

	// The request channels are buffered, so the startup requests are
	// queued before anything runs.
	if startupLayout != nil {
		ui.Requests() <- clientui.SetLayout{Layout: *startupLayout}
	}
	if cfg.Connection.Host != "" {
		connectionActor.Requests() <- connection.Connect{Host: cfg.Connection.Host, Port: cfg.Connection.Port}
	}
	if cfg.Script.Startup != "" {
		automationActor.Requests() <- automation.ExecuteFile{Path: cfg.Script.Startup}
		if cfg.Script.Watch {
			watcher := automation.NewWatcher(cfg.Script.Startup, automationActor, nil, logger)
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("script watcher stopped", "error", err)
				}
			}()
		}
	}

	logger.Info("starting",
		"version", version.Info(),
		"host", cfg.Connection.Host,
		"port", cfg.Connection.Port,
		"script", cfg.Script.Startup,
	)

	routed := make(chan error, 1)
	go func() {
		routed <- eventRouter.Run(ctx)
		cancel()
	}()

	uiErr := ui.Run(ctx)

	var routeErr error
	select {
	case routeErr = <-routed:
	case <-time.After(shutdownGrace):
		logger.Warn("router did not finish after the interface exited")
		cancel()
		routeErr = <-routed
	}
	cancel()
	<-connectionActor.Done()
	<-automationActor.Done()

	switch {
	case routeErr != nil && !errors.Is(routeErr, context.Canceled):
		logger.Error("event routing failed", "error", routeErr)
		return fmt.Errorf("routing events: %w", routeErr)
	case uiErr != nil && !errors.Is(uiErr, context.Canceled):
		return uiErr
	}
	logger.Info("session ended")
	return nil
}

func printHelp(flagSet interface{ PrintDefaults() }) {
	fmt.Fprintf(os.Stderr, `draugr is a terminal client for MUDs and other telnet services.

Connects to a server, shows its output above an input line, and runs
Lua scripts that automate the session.

Usage:
  draugr [flags]

Examples:
  # Connect to a server
  draugr --address mud.example.org --port 4000

  # Run a login script and reload it whenever it changes
  draugr --script ~/muds/login.lua --watch

  # Use a saved screen layout
  draugr -a mud.example.org --layout ~/muds/split.jsonc

Keys:
  Enter         send the input line
  Alt+Enter     send the input line without echoing or remembering it
  Up/Down       search history for lines starting with the typed text
  Esc           leave history search or clear the line
  PgUp/PgDown   scroll the transcript
  Alt+q         quit

Flags:
`)
	flagSet.PrintDefaults()
}
