// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the draugr
// client.
//
// Configuration is loaded from a single file named by either the
// DRAUGR_CONFIG environment variable (via [Load]) or the --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. Without a file the client runs on [Default] values and
// command-line flags.
//
// A file may define named worlds (servers) under "worlds". When the
// top-level "world" field names one of them, its values override the
// base connection and script settings, so one file can serve several
// MUDs.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${DRAUGR_CONFIG_DIR} (the directory containing the file),
// and ${VAR:-default} patterns are expanded. Environment variables never
// override config values directly.
//
// Key exports:
//
//   - [Config] -- master struct with Connection, History, Display, Script, Log
//   - [Default] -- returns a Config with every field populated
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other draugr packages.
package config
