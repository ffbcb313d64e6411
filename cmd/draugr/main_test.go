// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/Misza13/draugr/lib/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draugr.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestParseFlagsShorthands(t *testing.T) {
	t.Parallel()
	opts, flagSet, err := parseFlags([]string{"-a", "mud.example", "-p", "5000", "-s", "login.lua", "--watch", "--no-color"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.address != "mud.example" || opts.port != 5000 || opts.script != "login.lua" || !opts.watch || !opts.noColor {
		t.Errorf("parsed %+v", *opts)
	}
	if flagSet.Changed("layout") {
		t.Error("layout reported as changed")
	}
}

func TestParseFlagsErrors(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"--bogus"},
		{"--port", "many"},
		{"mud.example"},
	} {
		_, _, err := parseFlags(args)
		var usage *usageError
		if !errors.As(err, &usage) {
			t.Errorf("parseFlags(%q) = %v, want a usage error", args, err)
			continue
		}
		if usage.ExitCode() != 2 {
			t.Errorf("parseFlags(%q) exit code = %d, want 2", args, usage.ExitCode())
		}
	}
}

func TestParseFlagsHelp(t *testing.T) {
	t.Parallel()
	opts, _, err := parseFlags([]string{"-h"})
	if err != nil || !opts.help {
		t.Errorf("parseFlags(-h) = %+v, %v; want help", opts, err)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
connection:
  host: file.example
  port: 7000
script:
  startup: /scripts/file.lua
display:
  color: truecolor
`)

	tests := []struct {
		name       string
		args       []string
		wantHost   string
		wantPort   int
		wantScript string
		wantColor  string
		wantWatch  bool
	}{
		{
			name:       "file only",
			args:       []string{"--config", path},
			wantHost:   "file.example",
			wantPort:   7000,
			wantScript: "/scripts/file.lua",
			wantColor:  "truecolor",
		},
		{
			name:       "flags win",
			args:       []string{"--config", path, "-a", "flag.example", "-p", "4000", "-s", "flag.lua", "--no-color", "--watch"},
			wantHost:   "flag.example",
			wantPort:   4000,
			wantScript: "flag.lua",
			wantColor:  "ascii",
			wantWatch:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			opts, flagSet, err := parseFlags(test.args)
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			cfg, err := loadConfig(opts, flagSet)
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if cfg.Connection.Host != test.wantHost {
				t.Errorf("host = %q, want %q", cfg.Connection.Host, test.wantHost)
			}
			if cfg.Connection.Port != test.wantPort {
				t.Errorf("port = %d, want %d", cfg.Connection.Port, test.wantPort)
			}
			if cfg.Script.Startup != test.wantScript {
				t.Errorf("script = %q, want %q", cfg.Script.Startup, test.wantScript)
			}
			if cfg.Display.Color != test.wantColor {
				t.Errorf("color = %q, want %q", cfg.Display.Color, test.wantColor)
			}
			if cfg.Script.Watch != test.wantWatch {
				t.Errorf("watch = %t, want %t", cfg.Script.Watch, test.wantWatch)
			}
		})
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "log:\n  level: chatty\n")
	tests := [][]string{
		{"--config", path},
		{"--config", writeConfig(t, ""), "--watch"},
		{"--config", writeConfig(t, ""), "--port", "70000"},
		{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
	}
	for _, args := range tests {
		opts, flagSet, err := parseFlags(args)
		if err != nil {
			t.Fatalf("parseFlags(%q): %v", args, err)
		}
		_, err = loadConfig(opts, flagSet)
		var usage *usageError
		if !errors.As(err, &usage) {
			t.Errorf("loadConfig(%q) = %v, want a usage error", args, err)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for _, name := range config.LogLevels {
		var want slog.Level
		if err := want.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", name, err)
		}
		if got := parseLevel(name); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestColorProfile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		want    termenv.Profile
		wantSet bool
	}{
		{"auto", termenv.Ascii, false},
		{"ascii", termenv.Ascii, true},
		{"ansi", termenv.ANSI, true},
		{"ansi256", termenv.ANSI256, true},
		{"truecolor", termenv.TrueColor, true},
	}
	for _, test := range tests {
		got, set := colorProfile(test.name)
		if set != test.wantSet || (set && got != test.want) {
			t.Errorf("colorProfile(%q) = (%v, %t), want (%v, %t)", test.name, got, set, test.want, test.wantSet)
		}
	}
}

func TestFanoutHandler(t *testing.T) {
	t.Parallel()
	var verbose, quiet bytes.Buffer
	logger := slog.New(fanoutHandler{
		slog.NewTextHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With("component", "test")

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug disabled although one handler accepts it")
	}
	logger.Debug("detail")
	logger.Error("failure")

	if got := strings.Count(verbose.String(), "component=test"); got != 2 {
		t.Errorf("verbose handler got %d records, want 2:\n%s", got, verbose.String())
	}
	if !strings.Contains(quiet.String(), "msg=failure") || strings.Contains(quiet.String(), "detail") {
		t.Errorf("quiet handler output:\n%s", quiet.String())
	}
}

func TestOpenFileLogHandlerAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "draugr.log")
	for _, message := range []string{"first", "second"} {
		handler, closeFile, err := openFileLogHandler(path, slog.LevelInfo)
		if err != nil {
			t.Fatalf("openFileLogHandler: %v", err)
		}
		slog.New(handler).Info(message)
		slog.New(handler).Debug("hidden")
		closeFile()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"msg":"first"`) || !strings.Contains(lines[1], `"msg":"second"`) {
		t.Errorf("log file:\n%s", data)
	}
}
