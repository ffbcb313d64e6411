// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar draws a one-column scrollbar of the given height for
// a transcript of totalLines, of which visibleLines are on screen.
// linesFromBottom is how far the view is scrolled back from the newest
// line. The thumb fills the whole track when everything fits.
func RenderScrollbar(theme Theme, height, totalLines, visibleLines, linesFromBottom int) string {
	if height <= 0 {
		return ""
	}

	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(theme.ScrollThumb).Render("┃")

	thumbSize, thumbStart := height, 0
	if totalLines > visibleLines && visibleLines > 0 {
		thumbSize = max(1, height*visibleLines/totalLines)

		// Offsets are measured from the top of the transcript.
		scrollable := totalLines - visibleLines
		fromTop := scrollable - min(linesFromBottom, scrollable)
		if free := height - thumbSize; free > 0 {
			thumbStart = fromTop * free / scrollable
		}
	}

	lines := make([]string, height)
	for index := range lines {
		if index >= thumbStart && index < thumbStart+thumbSize {
			lines[index] = thumb
		} else {
			lines[index] = track
		}
	}
	return strings.Join(lines, "\n")
}
