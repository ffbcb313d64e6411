// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the look shared by the client's terminal
// interface: the color theme and the scrollbar drawn beside transcript
// panes. Rendering of panes themselves lives in lib/clientui.
package tui
