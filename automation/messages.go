// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import "github.com/Misza13/draugr/lib/layout"

// Request is a message to the actor.
type Request interface{ isRequest() }

// Output is text received from the server. Pending expect calls are
// matched against each of its lines.
type Output struct {
	Text string
}

// ExecuteFile reads a script file and runs it.
type ExecuteFile struct {
	Path string
}

// Execute runs script source. Name identifies the script in errors and
// log records.
type Execute struct {
	Name   string
	Source string
}

// Shutdown stops the actor and every running script.
type Shutdown struct{}

func (Output) isRequest()      {}
func (ExecuteFile) isRequest() {}
func (Execute) isRequest()     {}
func (Shutdown) isRequest()    {}

// Event is a message from the actor, emitted on behalf of a script.
type Event interface{ isEvent() }

// Connect asks for a connection to Host:Port.
type Connect struct {
	Host string
	Port int
}

// Send asks for Text to be sent to the server and echoed.
type Send struct {
	Text string
}

// SendSecret asks for Text to be sent to the server with a masked
// echo.
type SendSecret struct {
	Text string
}

// SetLayout carries a validated layout tree.
type SetLayout struct {
	Layout layout.Node
}

// Error reports a script that failed.
type Error struct {
	Err error
}

func (Connect) isEvent()    {}
func (Send) isEvent()       {}
func (SendSecret) isEvent() {}
func (SetLayout) isEvent()  {}
func (Error) isEvent()      {}
