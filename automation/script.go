// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/Misza13/draugr/lib/layout"
)

// errStopped unwinds a script whose actor has shut down. It is never
// reported.
var errStopped = errors.New("automation stopped")

// scriptRun is one execution of one script. Its methods run on the
// script's own goroutine.
type scriptRun struct {
	actor  *Actor
	ctx    context.Context
	name   string
	logger *slog.Logger
}

// start launches source on a new goroutine. Called only from Run.
func (actor *Actor) start(name, source string) {
	runID := uuid.NewString()
	run := &scriptRun{
		actor:  actor,
		ctx:    actor.scriptContext,
		name:   name,
		logger: actor.logger.With("script", name, "run", runID),
	}
	actor.scripts.Add(1)
	go func() {
		defer actor.scripts.Done()
		run.execute(source)
	}()
}

func (run *scriptRun) execute(source string) {
	state := lua.NewState()
	defer state.Close()
	state.SetContext(run.ctx)
	run.install(state)

	run.logger.Info("script started")
	err := run.call(state, source)
	switch {
	case run.ctx.Err() != nil:
		run.logger.Debug("script stopped at shutdown")
	case err != nil:
		run.logger.Warn("script failed", "error", err)
		run.actor.emit(run.ctx, Error{Err: fmt.Errorf("run script %s: %w", run.name, err)})
	default:
		run.logger.Info("script finished")
	}
}

// call compiles and runs source, reducing interpreter errors to their
// message.
func (run *scriptRun) call(state *lua.LState, source string) error {
	chunk, err := state.Load(strings.NewReader(source), run.name)
	if err != nil {
		return luaError(err)
	}
	state.Push(chunk)
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		return luaError(err)
	}
	return nil
}

func luaError(err error) error {
	var apiError *lua.ApiError
	if errors.As(err, &apiError) && apiError.Object != nil {
		return errors.New(apiError.Object.String())
	}
	return err
}

// install registers the host functions as globals.
func (run *scriptRun) install(state *lua.LState) {
	functions := map[string]lua.LGFunction{
		"connect":     run.connect,
		"send":        run.send,
		"send_secret": run.sendSecret,
		"expect":      run.expect,
		"set_layout":  run.setLayout,
		"log":         run.log,
		"sleep":       run.sleep,
	}
	for name, function := range functions {
		state.SetGlobal(name, state.NewFunction(function))
	}
}

// emit delivers a script event, unwinding the script if the actor has
// shut down.
func (run *scriptRun) emit(state *lua.LState, event Event) {
	if !run.actor.emit(run.ctx, event) {
		state.RaiseError("%v", errStopped)
	}
}

// connect(host, port)
func (run *scriptRun) connect(state *lua.LState) int {
	host := state.CheckString(1)
	port := state.CheckInt(2)
	if port < 1 || port > 65535 {
		state.ArgError(2, fmt.Sprintf("port %d out of range", port))
	}
	run.emit(state, Connect{Host: host, Port: port})
	return 0
}

// send(text)
func (run *scriptRun) send(state *lua.LState) int {
	run.emit(state, Send{Text: state.CheckString(1)})
	return 0
}

// send_secret(text)
func (run *scriptRun) sendSecret(state *lua.LState) int {
	run.emit(state, SendSecret{Text: state.CheckString(1)})
	return 0
}

// expect(pattern) -> line
func (run *scriptRun) expect(state *lua.LState) int {
	pattern, err := regexp.Compile(state.CheckString(1))
	if err != nil {
		state.RaiseError("expect: %v", err)
	}

	pending := waiter{pattern: pattern, reply: make(chan string, 1)}
	select {
	case run.actor.register <- pending:
	case <-run.ctx.Done():
		state.RaiseError("%v", errStopped)
	}

	select {
	case line := <-pending.reply:
		state.Push(lua.LString(line))
		return 1
	case <-run.ctx.Done():
		state.RaiseError("%v", errStopped)
	}
	return 0
}

// set_layout(table)
func (run *scriptRun) setLayout(state *lua.LState) int {
	value, err := fromLua(state.CheckTable(1), 0)
	if err != nil {
		state.RaiseError("set_layout: %v", err)
	}
	node, err := layout.Decode(value)
	if err == nil {
		err = layout.Validate(node)
	}
	if err != nil {
		state.RaiseError("set_layout: %v", err)
	}
	run.emit(state, SetLayout{Layout: node})
	return 0
}

// log(message)
func (run *scriptRun) log(state *lua.LState) int {
	run.logger.Info(state.CheckString(1))
	return 0
}

// sleep(milliseconds)
func (run *scriptRun) sleep(state *lua.LState) int {
	milliseconds := float64(state.CheckNumber(1))
	select {
	case <-run.actor.clock.After(time.Duration(milliseconds * float64(time.Millisecond))):
	case <-run.ctx.Done():
		state.RaiseError("%v", errStopped)
	}
	return 0
}
