// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the client's color palette. Colors are ANSI 256-color codes
// so they degrade predictably on lesser terminals.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Transcript line categories.
	UserInput lipgloss.Color // Echo of lines the user sent.
	Info      lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Pane chrome.
	BorderColor   lipgloss.Color
	ActiveTitle   lipgloss.Color // Pane ID of the pane PageUp/PageDown scroll.
	InactiveTitle lipgloss.Color
	ScrollThumb   lipgloss.Color

	// Input line.
	Completion       lipgloss.Color // History-search suggestion after the query.
	CursorForeground lipgloss.Color
	CursorBackground lipgloss.Color
}

// DefaultTheme is tuned for dark terminal backgrounds.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	UserInput: lipgloss.Color("87"),  // light cyan
	Info:      lipgloss.Color("120"), // light green
	Warning:   lipgloss.Color("228"), // light yellow
	Error:     lipgloss.Color("210"), // light red

	BorderColor:   lipgloss.Color("178"), // amber
	ActiveTitle:   lipgloss.Color("255"),
	InactiveTitle: lipgloss.Color("240"),
	ScrollThumb:   lipgloss.Color("220"),

	Completion:       lipgloss.Color("241"),
	CursorForeground: lipgloss.Color("235"),
	CursorBackground: lipgloss.Color("252"),
}
