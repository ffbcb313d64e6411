// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/Misza13/draugr/lib/config"
)

// options holds the parsed command line. Fields left at their flag
// defaults do not override the configuration file.
type options struct {
	address    string
	port       int
	script     string
	layout     string
	configPath string
	logFile    string
	logLevel   string
	noColor    bool
	watch      bool

	showVersion bool
	help        bool
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("draugr", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.address, "address", "a", "", "server host name or address to connect to at startup")
	flagSet.IntVarP(&opts.port, "port", "p", config.Default().Connection.Port, "server port")
	flagSet.StringVarP(&opts.script, "script", "s", "", "Lua script to run at startup")
	flagSet.StringVar(&opts.layout, "layout", "", "JSONC layout file applied at startup")
	flagSet.StringVar(&opts.configPath, "config", "", "YAML configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON log records to this file")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "minimum level written to the log file (debug, info, warn, error)")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	flagSet.BoolVar(&opts.watch, "watch", false, "rerun the startup script whenever it changes")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.help = true
			return &opts, flagSet, nil
		}
		return nil, nil, usageErrorf("%w", err).withHint("Run 'draugr --help' for usage.")
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, nil, usageErrorf("unexpected argument: %s", rest[0]).withHint("Run 'draugr --help' for usage.")
	}
	flagSet.SetOutput(os.Stderr)
	return &opts, flagSet, nil
}

// loadConfig reads the configuration file named by --config or the
// environment, applies flags the user set, and validates the result.
func loadConfig(opts *options, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, usageErrorf("loading configuration: %w", err)
	}

	if flagSet.Changed("address") {
		cfg.Connection.Host = opts.address
	}
	if flagSet.Changed("port") {
		cfg.Connection.Port = opts.port
	}
	if flagSet.Changed("script") {
		cfg.Script.Startup = opts.script
	}
	if flagSet.Changed("layout") {
		cfg.Script.Layout = opts.layout
	}
	if flagSet.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noColor {
		cfg.Display.Color = "ascii"
	}
	if opts.watch {
		cfg.Script.Watch = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageErrorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// usageError is a problem with the command line or configuration. The
// process exits with status 2 and prints the hint when one is set.
type usageError struct {
	err  error
	hint string
}

func usageErrorf(format string, args ...any) *usageError {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func (e *usageError) withHint(hint string) *usageError {
	e.hint = hint
	return e
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func (e *usageError) ExitCode() int { return 2 }
