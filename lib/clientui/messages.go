// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import "github.com/Misza13/draugr/lib/layout"

// Request is a message to the interface. Pane selects a transcript
// pane by ID; zero, or an ID the current layout lacks, means
// layout.DefaultPaneID.
type Request interface{ isRequest() }

// Print appends server text. Text may carry ANSI styling and need not
// end in a newline: a trailing fragment stays open and later text
// continues it.
type Print struct {
	Text string
	Pane int
}

// PrintUserInput echoes a line the user or a script sent.
type PrintUserInput struct {
	Text string
	Pane int
}

// PrintInfo appends an informational notice, one "[INFO]" line per
// line of Message.
type PrintInfo struct {
	Message string
	Pane    int
}

// PrintWarning appends a warning, tagged "[WARN]".
type PrintWarning struct {
	Message string
	Pane    int
}

// PrintError appends an error, tagged "[ERR]".
type PrintError struct {
	Message string
	Pane    int
}

// SetLayout replaces the pane arrangement. Transcript panes whose IDs
// appear in the new layout keep their contents.
type SetLayout struct {
	Layout layout.Node
}

func (Print) isRequest()          {}
func (PrintUserInput) isRequest() {}
func (PrintInfo) isRequest()      {}
func (PrintWarning) isRequest()   {}
func (PrintError) isRequest()     {}
func (SetLayout) isRequest()      {}

// Event is a message from the interface.
type Event interface{ isEvent() }

// Send is a line the user submitted.
type Send struct {
	Text string
}

// SendSecret is a line the user submitted as secret. It is not kept in
// input history.
type SendSecret struct {
	Text string
}

// Quit is sent once, when the user asks to exit.
type Quit struct{}

func (Send) isEvent()       {}
func (SendSecret) isEvent() {}
func (Quit) isEvent()       {}
