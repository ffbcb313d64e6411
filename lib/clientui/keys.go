// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the interface's key bindings. Printable keys that
// match no binding are typed into the input line.
type KeyMap struct {
	Submit       key.Binding
	SubmitSecret key.Binding // Send without recording in history; echo is masked.
	Cancel       key.Binding // Leave history search.

	// Input line editing and history.
	Backspace key.Binding
	Delete    key.Binding
	Left      key.Binding
	Right     key.Binding
	Home      key.Binding
	End       key.Binding
	Up        key.Binding
	Down      key.Binding

	// Transcript scrolling (active pane, half a page at a time).
	PageUp   key.Binding
	PageDown key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "send"),
	),
	SubmitSecret: key.NewBinding(
		key.WithKeys("alt+enter"),
		key.WithHelp("Alt+Enter", "send secret"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel completion"),
	),
	Backspace: key.NewBinding(key.WithKeys("backspace")),
	Delete:    key.NewBinding(key.WithKeys("delete")),
	Left:      key.NewBinding(key.WithKeys("left")),
	Right:     key.NewBinding(key.WithKeys("right")),
	Home: key.NewBinding(
		key.WithKeys("home", "ctrl+a"),
		key.WithHelp("Home", "line start"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "ctrl+e"),
		key.WithHelp("End", "line end"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "older history"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "newer history"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "scroll back"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "scroll forward"),
	),
	Quit: key.NewBinding(
		key.WithKeys("alt+q", "ctrl+c"),
		key.WithHelp("Alt+q", "quit"),
	),
}
