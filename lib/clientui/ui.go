// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// channelCapacity is the buffer size of the request and event
// channels.
const channelCapacity = 256

// UI runs the interface as an actor. Create with New, start with Run.
type UI struct {
	model          Model
	programOptions []tea.ProgramOption

	requests chan Request
	events   chan Event
	done     chan struct{}
	outbox   *outbox
}

// New creates a UI. programOptions are passed to tea.NewProgram; the
// binary passes tea.WithAltScreen, tests pass input and output
// overrides.
func New(options Options, programOptions ...tea.ProgramOption) *UI {
	ui := &UI{
		programOptions: programOptions,
		requests:       make(chan Request, channelCapacity),
		events:         make(chan Event, channelCapacity),
		done:           make(chan struct{}),
		outbox:         newOutbox(),
	}
	ui.model = NewModel(options, ui.outbox.post)
	return ui
}

// Requests returns the channel the interface reads requests from.
func (ui *UI) Requests() chan<- Request { return ui.requests }

// Events returns the channel of user actions. It is closed when Run
// returns.
func (ui *UI) Events() <-chan Event { return ui.events }

// Done returns a channel that is closed when Run returns.
func (ui *UI) Done() <-chan struct{} { return ui.done }

// Run shows the interface until the user quits or ctx is cancelled.
// Events posted before the program exits, Quit included, are delivered
// before Events is closed. It must be called exactly once.
func (ui *UI) Run(ctx context.Context) error {
	defer close(ui.done)

	options := append([]tea.ProgramOption{tea.WithContext(ctx)}, ui.programOptions...)
	program := tea.NewProgram(ui.model, options...)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		ui.outbox.drain(ctx, ui.events)
	}()

	stopPump := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		ui.pump(program, stopPump)
	}()

	_, err := program.Run()

	close(stopPump)
	<-pumpDone
	ui.outbox.close()
	<-drained

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("running terminal interface: %w", err)
	}
	return nil
}

// pump forwards requests into the program in arrival order.
func (ui *UI) pump(program *tea.Program, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case request := <-ui.requests:
			program.Send(requestMsg{request: request})
		}
	}
}
