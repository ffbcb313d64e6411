// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Misza13/draugr/lib/layout"
	"github.com/Misza13/draugr/lib/tui"
)

// View implements tea.Model.
func (model Model) View() string {
	if model.width <= 0 || model.height <= 0 {
		return ""
	}
	return strings.Join(model.render(model.root, model.width, model.height), "\n")
}

// render returns exactly height rows of exactly width cells.
func (model Model) render(node layout.Node, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	switch node.Kind {
	case layout.KindVStack:
		rows := make([]string, 0, height)
		for index, size := range layout.Split(height, len(node.Children), node.Constraints) {
			rows = append(rows, model.render(node.Children[index], width, size)...)
		}
		return fill(rows, width, height)

	case layout.KindHStack:
		var columns []string
		for index, size := range layout.Split(width, len(node.Children), node.Constraints) {
			if size > 0 {
				columns = append(columns, strings.Join(model.render(node.Children[index], size, height), "\n"))
			}
		}
		return strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, columns...), "\n")

	case layout.KindScroll:
		return model.renderScroll(node.ID, width, height)

	case layout.KindInput:
		return model.renderInput(width, height)
	}
	return fill(nil, width, height)
}

// renderScroll draws a title rule, then the transcript with a
// scrollbar in the last column.
func (model Model) renderScroll(id, width, height int) []string {
	rows := []string{model.titleRule(id, width)}
	bodyHeight := height - 1
	if bodyHeight <= 0 {
		return rows
	}

	pane, ok := model.panes[id]
	if !ok {
		return fill(rows, width, height)
	}

	textWidth := width
	var scrollbar []string
	if width > 1 {
		textWidth = width - 1
		scrollbar = strings.Split(tui.RenderScrollbar(model.theme, bodyHeight, pane.total(), bodyHeight, pane.offset), "\n")
	}

	body := pane.visibleRows(textWidth, bodyHeight)
	for index := range bodyHeight {
		var line string
		if index < len(body) {
			line = body[index]
		}
		row := fitWidth(line, textWidth)
		if scrollbar != nil {
			row += scrollbar[index]
		}
		rows = append(rows, row)
	}
	return rows
}

// titleRule is a horizontal rule with the pane ID centered in it.
// Panes without an ID get a plain rule.
func (model Model) titleRule(id, width int) string {
	if id == 0 {
		return model.styles.border.Render(strings.Repeat("─", width))
	}
	label := strconv.Itoa(id)
	labelWidth := len(label) + 2
	if labelWidth > width {
		return model.styles.border.Render(strings.Repeat("─", width))
	}
	idStyle := model.styles.inactive
	if id == model.activePane {
		idStyle = model.styles.active
	}
	left := (width - labelWidth) / 2
	right := width - labelWidth - left
	return model.styles.border.Render(strings.Repeat("─", left)+"[") +
		idStyle.Render(label) +
		model.styles.border.Render("]"+strings.Repeat("─", right))
}

// renderInput draws a rule above the input line. The line scrolls
// horizontally to keep the cursor visible.
func (model Model) renderInput(width, height int) []string {
	var rows []string
	if height > 1 {
		rows = append(rows, model.styles.border.Render(strings.Repeat("─", width)))
	}

	text, completion, cursor := model.editor.View()
	typed := []rune(text)
	suggested := []rune(completion)
	start := max(0, cursor-width+1)

	var line strings.Builder
	var run []rune
	runClass := -1
	flush := func() {
		if len(run) == 0 {
			return
		}
		style := model.styles.normal
		switch runClass {
		case classCompletion:
			style = model.styles.completion
		case classCursor:
			style = model.styles.cursor
		}
		line.WriteString(style.Render(string(run)))
		run = run[:0]
	}
	for position := start; position < start+width; position++ {
		character, class := ' ', classText
		switch {
		case position < len(typed):
			character = typed[position]
		case position-len(typed) < len(suggested):
			character, class = suggested[position-len(typed)], classCompletion
		}
		if position == cursor {
			class = classCursor
		}
		if class != runClass {
			flush()
			runClass = class
		}
		run = append(run, character)
	}
	flush()

	rows = append(rows, line.String())
	return fill(rows, width, height)
}

const (
	classText = iota
	classCompletion
	classCursor
)

// fitWidth truncates or pads line to exactly width cells. Styled lines
// are reset at the end so colors do not bleed into the next pane.
func fitWidth(line string, width int) string {
	line = ansi.Truncate(line, width, "")
	if strings.ContainsRune(line, '\x1b') {
		line += ansi.ResetStyle
	}
	if padding := width - ansi.StringWidth(line); padding > 0 {
		line += strings.Repeat(" ", padding)
	}
	return line
}

// fill pads rows with blank lines, or truncates them, to height.
func fill(rows []string, width, height int) []string {
	if len(rows) > height {
		return rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, strings.Repeat(" ", width))
	}
	return rows
}
