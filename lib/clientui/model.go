// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Misza13/draugr/lib/inputline"
	"github.com/Misza13/draugr/lib/layout"
	"github.com/Misza13/draugr/lib/tui"
)

// Options configures the interface.
type Options struct {
	// HistoryCapacity is how many submitted lines the input line
	// remembers. Zero means inputline.DefaultHistoryCapacity.
	HistoryCapacity int

	// Scrollback is how many lines each transcript pane keeps. Zero
	// means DefaultScrollback.
	Scrollback int

	// Welcome is printed to the main pane at startup when non-empty.
	Welcome string

	Theme tui.Theme
	Keys  KeyMap
}

// requestMsg delivers a Request into the bubbletea loop.
type requestMsg struct {
	request Request
}

// styles are the lipgloss styles derived from the theme.
type styles struct {
	userInput  lipgloss.Style
	info       lipgloss.Style
	warning    lipgloss.Style
	error      lipgloss.Style
	border     lipgloss.Style
	active     lipgloss.Style
	inactive   lipgloss.Style
	normal     lipgloss.Style
	completion lipgloss.Style
	cursor     lipgloss.Style
}

func newStyles(theme tui.Theme) styles {
	return styles{
		userInput:  lipgloss.NewStyle().Foreground(theme.UserInput).Bold(true),
		info:       lipgloss.NewStyle().Foreground(theme.Info),
		warning:    lipgloss.NewStyle().Foreground(theme.Warning),
		error:      lipgloss.NewStyle().Foreground(theme.Error),
		border:     lipgloss.NewStyle().Foreground(theme.BorderColor),
		active:     lipgloss.NewStyle().Foreground(theme.ActiveTitle),
		inactive:   lipgloss.NewStyle().Foreground(theme.InactiveTitle),
		normal:     lipgloss.NewStyle().Foreground(theme.NormalText),
		completion: lipgloss.NewStyle().Foreground(theme.Completion),
		cursor:     lipgloss.NewStyle().Foreground(theme.CursorForeground).Background(theme.CursorBackground),
	}
}

// Model is the bubbletea model of the client interface: a layout tree
// of transcript panes and one input line.
type Model struct {
	theme  tui.Theme
	keys   KeyMap
	styles styles

	editor *inputline.Editor
	root   layout.Node

	// panes holds the transcript of every scroll pane ID in root.
	panes      map[int]*scrollPane
	scrollback int

	// activePane is the pane PageUp and PageDown scroll.
	activePane int

	width  int
	height int

	// emit hands an event to the outbox. It never blocks.
	emit func(Event)
}

// NewModel creates a Model with the default layout. Events are passed
// to emit, which must not block.
func NewModel(options Options, emit func(Event)) Model {
	if options.Theme == (tui.Theme{}) {
		options.Theme = tui.DefaultTheme
	}
	if options.Keys.Quit.Keys() == nil {
		options.Keys = DefaultKeyMap
	}
	model := Model{
		theme:      options.Theme,
		keys:       options.Keys,
		styles:     newStyles(options.Theme),
		editor:     inputline.New(options.HistoryCapacity),
		panes:      make(map[int]*scrollPane),
		scrollback: options.Scrollback,
		activePane: layout.DefaultPaneID,
		emit:       emit,
	}
	model.applyLayout(layout.Default())
	if options.Welcome != "" {
		model.pane(layout.DefaultPaneID).write(options.Welcome + "\n")
	}
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.measure()

	case requestMsg:
		model.handleRequest(message.request)
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	editor := model.editor
	switch {
	case key.Matches(message, model.keys.Quit):
		model.emit(Quit{})
		return model, tea.Quit

	case key.Matches(message, model.keys.SubmitSecret):
		model.emit(SendSecret{Text: editor.Clear()})
	case key.Matches(message, model.keys.Submit):
		model.emit(Send{Text: editor.Submit()})
	case key.Matches(message, model.keys.Cancel):
		editor.Cancel()

	case key.Matches(message, model.keys.Backspace):
		editor.Backspace()
	case key.Matches(message, model.keys.Delete):
		editor.Delete()
	case key.Matches(message, model.keys.Left):
		editor.Left()
	case key.Matches(message, model.keys.Right):
		editor.Right()
	case key.Matches(message, model.keys.Home):
		editor.Home()
	case key.Matches(message, model.keys.End):
		editor.End()
	case key.Matches(message, model.keys.Up):
		editor.Up()
	case key.Matches(message, model.keys.Down):
		editor.Down()

	case key.Matches(message, model.keys.PageUp):
		model.pane(model.activePane).pageUp()
	case key.Matches(message, model.keys.PageDown):
		model.pane(model.activePane).pageDown()

	case (message.Type == tea.KeyRunes || message.Type == tea.KeySpace) && !message.Alt:
		editor.TypeText(sanitize(string(message.Runes)))
	}
	return model, nil
}

func (model *Model) handleRequest(request Request) {
	switch request := request.(type) {
	case Print:
		model.pane(request.Pane).write(request.Text)
	case PrintUserInput:
		model.pane(request.Pane).finishLine(model.styles.userInput.Render(request.Text))
	case PrintInfo:
		model.printNotice(request.Pane, "[INFO] ", request.Message, model.styles.info)
	case PrintWarning:
		model.printNotice(request.Pane, "[WARN] ", request.Message, model.styles.warning)
	case PrintError:
		model.printNotice(request.Pane, "[ERR] ", request.Message, model.styles.error)
	case SetLayout:
		if err := layout.Validate(request.Layout); err != nil {
			model.printNotice(0, "[ERR] ", fmt.Sprintf("layout rejected: %v", err), model.styles.error)
			return
		}
		model.applyLayout(request.Layout)
		model.measure()
	}
}

func (model *Model) printNotice(paneID int, prefix, message string, style lipgloss.Style) {
	pane := model.pane(paneID)
	for _, line := range strings.Split(message, "\n") {
		pane.pushLine(style.Render(prefix + line))
	}
}

// pane returns the transcript for id, falling back to the default
// pane for zero or unknown IDs.
func (model *Model) pane(id int) *scrollPane {
	if pane, ok := model.panes[id]; ok {
		return pane
	}
	return model.panes[layout.DefaultPaneID]
}

// applyLayout switches to root, which must be valid. Transcripts of
// IDs present in both layouts are carried over.
func (model *Model) applyLayout(root layout.Node) {
	panes := make(map[int]*scrollPane)
	for _, id := range root.ScrollIDs() {
		if existing, ok := model.panes[id]; ok {
			panes[id] = existing
		} else {
			panes[id] = newScrollPane(model.scrollback)
		}
	}
	model.root = root
	model.panes = panes
	if _, ok := panes[model.activePane]; !ok {
		model.activePane = layout.DefaultPaneID
	}
}

// measure records each transcript pane's height for scrolling.
func (model *Model) measure() {
	model.visit(model.root, model.width, model.height, func(node layout.Node, width, height int) {
		if pane, ok := model.panes[node.ID]; ok && node.Kind == layout.KindScroll {
			pane.height = max(1, height-1)
		}
	})
}

// visit walks the leaves of node with the size each receives.
func (model *Model) visit(node layout.Node, width, height int, leaf func(layout.Node, int, int)) {
	switch node.Kind {
	case layout.KindVStack:
		for index, size := range layout.Split(height, len(node.Children), node.Constraints) {
			model.visit(node.Children[index], width, size, leaf)
		}
	case layout.KindHStack:
		for index, size := range layout.Split(width, len(node.Children), node.Constraints) {
			model.visit(node.Children[index], size, height, leaf)
		}
	default:
		leaf(node, width, height)
	}
}
