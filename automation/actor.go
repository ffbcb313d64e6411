// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package automation runs user Lua scripts against the live session.
//
// Each script runs on its own goroutine with its own interpreter and
// talks to the rest of the client only through host functions:
//
//	connect("mud.example.org", 4000)
//	expect("^By what name")
//	send("Draugr")
//	expect("^Password:")
//	send_secret(os.getenv("MUD_PASSWORD"))
//
// expect suspends the script until a line of server output matches its
// pattern. The Actor owns the list of pending expectations and tests
// every line of every Output request against all of them; each
// expectation resolves at most once. Expectations never time out. At
// Shutdown they are dropped and the suspended scripts are unwound
// without reporting an error.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/Misza13/draugr/lib/clock"
)

// channelCapacity is the buffer size of the request, event, and
// registration channels.
const channelCapacity = 256

// waiter is one pending expect call.
type waiter struct {
	pattern *regexp.Regexp

	// reply has capacity 1 so resolving never blocks the actor.
	reply chan string
}

// Actor arbitrates between running scripts and server output. Create
// with New, start with Run.
type Actor struct {
	clock  clock.Clock
	logger *slog.Logger

	requests chan Request
	events   chan Event
	done     chan struct{}

	// register carries new waiters from script goroutines.
	register chan waiter

	// waiters is owned by the Run goroutine.
	waiters []waiter

	// partial is the unterminated tail of the output seen so far,
	// usually a prompt. Owned by the Run goroutine.
	partial string

	// scriptContext is cancelled when Run returns. Set by Run before
	// any script starts.
	scriptContext context.Context
	scripts       sync.WaitGroup
}

// Option configures an Actor.
type Option func(*Actor)

// WithClock sets the clock behind the sleep host function. The default
// is clock.Real().
func WithClock(c clock.Clock) Option {
	return func(actor *Actor) { actor.clock = c }
}

// WithLogger sets the logger. Scripts write to it with log(). The
// default discards records.
func WithLogger(logger *slog.Logger) Option {
	return func(actor *Actor) { actor.logger = logger }
}

// New creates an Actor. It does nothing until Run is called.
func New(options ...Option) *Actor {
	actor := &Actor{
		clock:    clock.Real(),
		logger:   slog.New(slog.DiscardHandler),
		requests: make(chan Request, channelCapacity),
		events:   make(chan Event, channelCapacity),
		done:     make(chan struct{}),
		register: make(chan waiter, channelCapacity),
	}
	for _, option := range options {
		option(actor)
	}
	actor.logger = actor.logger.With("component", "automation")
	return actor
}

// Requests returns the channel the actor reads requests from.
func (actor *Actor) Requests() chan<- Request { return actor.requests }

// Events returns the channel scripts report on. It is closed when Run
// returns, after every script goroutine has exited.
func (actor *Actor) Events() <-chan Event { return actor.events }

// Done returns a channel that is closed when Run returns.
func (actor *Actor) Done() <-chan struct{} { return actor.done }

// Run serves requests until Shutdown or until ctx is cancelled. On
// return every running script has been stopped. It must be called
// exactly once.
func (actor *Actor) Run(ctx context.Context) {
	scriptContext, cancelScripts := context.WithCancel(ctx)
	actor.scriptContext = scriptContext

	defer close(actor.done)
	defer close(actor.events)
	defer actor.scripts.Wait()
	defer cancelScripts()

	for {
		select {
		case <-ctx.Done():
			return
		case request := <-actor.requests:
			if stop := actor.handleRequest(request); stop {
				if len(actor.waiters) > 0 {
					actor.logger.Debug("dropping pending expectations", "count", len(actor.waiters))
				}
				actor.waiters = nil
				return
			}
		case pending := <-actor.register:
			actor.waiters = append(actor.waiters, pending)
		}
	}
}

func (actor *Actor) handleRequest(request Request) bool {
	switch request := request.(type) {
	case Output:
		actor.distribute(request.Text)
	case ExecuteFile:
		source, err := os.ReadFile(request.Path)
		if err != nil {
			actor.emit(actor.scriptContext, Error{Err: fmt.Errorf("run script %s: %w", request.Path, err)})
			return false
		}
		actor.start(request.Path, string(source))
	case Execute:
		actor.start(request.Name, request.Source)
	case Shutdown:
		actor.logger.Debug("shutting down")
		return true
	default:
		actor.logger.Error("unknown request type", "type", fmt.Sprintf("%T", request))
	}
	return false
}

// distribute resolves every waiter whose pattern matches a line of
// output. Lines are compared without their terminators and without
// ANSI escape sequences.
func (actor *Actor) distribute(text string) {
	for _, line := range actor.assemble(text) {
		if len(actor.waiters) == 0 {
			return
		}
		remaining := actor.waiters[:0]
		for _, pending := range actor.waiters {
			if pending.pattern.MatchString(line) {
				pending.reply <- line
				continue
			}
			remaining = append(remaining, pending)
		}
		clear(actor.waiters[len(remaining):])
		actor.waiters = remaining
	}
}

// maxPartial bounds the unterminated tail kept between outputs.
const maxPartial = 4096

// assemble joins text onto the held unterminated tail and returns the
// lines waiters should see. A trailing fragment with no newline
// (typically a prompt) is returned as a line and also held, so a line
// split across outputs is seen whole once it completes. A completed
// line identical to the fragment already returned is not repeated.
func (actor *Actor) assemble(text string) []string {
	held := actor.partial
	actor.partial = ""
	text = held + text

	var lines []string
	continuing := held != ""
	for {
		newline := strings.IndexByte(text, '\n')
		if newline < 0 {
			break
		}
		line := cleanLine(text[:newline])
		text = text[newline+1:]
		if continuing {
			continuing = false
			if line == cleanLine(held) {
				continue
			}
		}
		lines = append(lines, line)
	}

	if text == "" {
		return lines
	}
	if len(text) <= maxPartial {
		actor.partial = text
	}
	line := cleanLine(text)
	if continuing && line == cleanLine(held) {
		return lines
	}
	return append(lines, line)
}

// cleanLine drops a carriage return and ANSI escape sequences.
func cleanLine(line string) string {
	return ansi.Strip(strings.TrimSuffix(line, "\r"))
}

// emit delivers an event unless ctx is cancelled first.
func (actor *Actor) emit(ctx context.Context, event Event) bool {
	select {
	case actor.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
