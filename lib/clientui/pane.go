// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Misza13/draugr/lib/ring"
)

// DefaultScrollback is how many lines a transcript pane keeps when no
// capacity is configured.
const DefaultScrollback = 2000

// scrollPane is the transcript behind one scroll pane ID. Lines are
// stored as received, ANSI styling included, and wrapped at render
// time.
type scrollPane struct {
	lines *ring.History[string]

	// partial is the unterminated tail of the last Print, usually a
	// prompt. It displays as the newest line.
	partial string

	// offset is how many lines the view is scrolled back from the
	// newest. Zero follows new output.
	offset int

	// height is the number of transcript rows the pane had at the last
	// layout.
	height int
}

func newScrollPane(capacity int) *scrollPane {
	if capacity <= 0 {
		capacity = DefaultScrollback
	}
	return &scrollPane{lines: ring.New[string](capacity), height: 1}
}

// write appends server text, completing the open fragment first.
func (pane *scrollPane) write(text string) {
	text = pane.partial + text
	pane.partial = ""
	for {
		newline := strings.IndexByte(text, '\n')
		if newline < 0 {
			break
		}
		pane.push(text[:newline])
		text = text[newline+1:]
	}
	pane.partial = text
}

// finishLine completes the open fragment with suffix, so an echoed
// command lands after the prompt it answers.
func (pane *scrollPane) finishLine(suffix string) {
	line := pane.partial + suffix
	pane.partial = ""
	pane.push(line)
}

// pushLine appends a complete line below any open fragment.
func (pane *scrollPane) pushLine(line string) {
	if pane.partial != "" {
		pane.push(pane.partial)
		pane.partial = ""
	}
	pane.push(line)
}

func (pane *scrollPane) push(line string) {
	pane.lines.PushBack(sanitize(line))
	if pane.offset > 0 {
		pane.offset = min(pane.offset+1, pane.maxOffset())
	}
}

// total is the number of displayable lines, the open fragment
// included.
func (pane *scrollPane) total() int {
	if pane.partial != "" {
		return pane.lines.Size() + 1
	}
	return pane.lines.Size()
}

func (pane *scrollPane) maxOffset() int { return max(0, pane.total()-pane.height) }

func (pane *scrollPane) pageUp() {
	pane.offset = min(pane.offset+max(1, pane.height/2), pane.maxOffset())
}

func (pane *scrollPane) pageDown() {
	pane.offset = max(0, pane.offset-max(1, pane.height/2))
}

// visibleRows returns up to height wrapped rows ending offset lines
// before the newest, oldest first.
func (pane *scrollPane) visibleRows(width, height int) []string {
	width = max(1, width)
	rows := make([]string, 0, height)
	skip := pane.offset

	// collect adds a line's rows, newest first, and reports whether
	// more rows fit.
	collect := func(line string) bool {
		if skip > 0 {
			skip--
			return true
		}
		wrapped := strings.Split(ansi.Hardwrap(line, width, true), "\n")
		for index := len(wrapped) - 1; index >= 0 && len(rows) < height; index-- {
			rows = append(rows, wrapped[index])
		}
		return len(rows) < height
	}

	more := true
	if pane.partial != "" {
		more = collect(sanitize(pane.partial))
	}
	if more {
		for line := range pane.lines.IterFromBack() {
			if !collect(line) {
				break
			}
		}
	}
	slices.Reverse(rows)
	return rows
}

// sanitize drops carriage returns and other control characters that
// would move the terminal cursor. Escape sequences are kept; tabs
// become spaces.
func sanitize(line string) string {
	line = strings.ReplaceAll(line, "\t", "    ")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != 0x1b || r == 0x7f {
			return -1
		}
		return r
	}, line)
}
