// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package clientui is the client's terminal interface, built on
// bubbletea.
//
// The screen is a layout tree (see lib/layout) of transcript panes and
// a single input line. Other components talk to it like any actor: UI
// accepts Requests (print to a pane, replace the layout) and reports
// Events (the user sent a line, asked to quit). A pump goroutine feeds
// requests into the bubbletea program; events leave through an
// unbounded ordered outbox so Update never blocks on a slow consumer.
//
// LogHandler mirrors log records at or above a chosen level into the
// main transcript, since the terminal cannot carry a log stream while
// the interface owns it.
package clientui
