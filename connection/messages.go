// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"errors"

	"github.com/Misza13/draugr/lib/telnet"
)

// ErrNotConnected is wrapped by the Error event emitted for a Send or
// Disconnect that arrives while no connection is open.
var ErrNotConnected = errors.New("not connected")

// Request is a message to the actor. The concrete types are Connect,
// Send, Disconnect, and Shutdown.
type Request interface{ isRequest() }

// Connect opens a connection to Host:Port, replacing any open one.
type Connect struct {
	Host string
	Port int
}

// Send writes Line followed by the line terminator.
type Send struct {
	Line string
}

// Disconnect closes the open connection and stops the actor. With no
// open connection it is reported as an error and the actor keeps
// running.
type Disconnect struct{}

// Shutdown closes any open connection and stops the actor.
type Shutdown struct{}

func (Connect) isRequest()    {}
func (Send) isRequest()       {}
func (Disconnect) isRequest() {}
func (Shutdown) isRequest()   {}

// Event is a message from the actor. The concrete types are Data, Info,
// Warning, Error, and Unhandled.
type Event interface{ isEvent() }

// Data is decoded text received from the server. It may end partway
// through a line; prompts usually do.
type Data struct {
	Text string
}

// Info reports progress, such as a connection being established.
type Info struct {
	Message string
}

// Warning reports a degraded state. Message "disconnected" follows
// every connection failure.
type Warning struct {
	Message string
}

// Error reports a failed request or connection failure.
type Error struct {
	Err error
}

// Unhandled carries a telnet event the actor does not act on, for
// display.
type Unhandled struct {
	Event telnet.Event
}

func (Data) isEvent()      {}
func (Info) isEvent()      {}
func (Warning) isEvent()   {}
func (Error) isEvent()     {}
func (Unhandled) isEvent() {}
