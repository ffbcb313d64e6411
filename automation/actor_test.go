// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Misza13/draugr/lib/clock"
	"github.com/Misza13/draugr/lib/layout"
	"github.com/Misza13/draugr/lib/testutil"
)

const testTimeout = 5 * time.Second

func startActor(t *testing.T, options ...Option) *Actor {
	t.Helper()
	actor := New(options...)
	ctx, cancel := context.WithCancel(context.Background())
	go actor.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-actor.Done()
	})
	return actor
}

func request(t *testing.T, actor *Actor, req Request) {
	t.Helper()
	testutil.RequireSend(t, actor.Requests(), req, testTimeout, "sending %T", req)
}

func nextEvent(t *testing.T, actor *Actor) Event {
	t.Helper()
	return testutil.RequireReceive(t, actor.Events(), testTimeout, "waiting for automation event")
}

func requireEvent(t *testing.T, actor *Actor, want Event) {
	t.Helper()
	if got := nextEvent(t, actor); got != want {
		t.Fatalf("got event %#v, want %#v", got, want)
	}
}

func requireError(t *testing.T, actor *Actor) error {
	t.Helper()
	event := nextEvent(t, actor)
	errorEvent, ok := event.(Error)
	if !ok {
		t.Fatalf("got event %#v, want Error", event)
	}
	return errorEvent.Err
}

// feedUntilEvent repeats output until the actor emits an event. A
// script registers its expectation asynchronously, so a single Output
// could arrive before the expectation exists.
func feedUntilEvent(t *testing.T, actor *Actor, output string) Event {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		request(t, actor, Output{Text: output})
		select {
		case event := <-actor.Events():
			return event
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no event after feeding %q for %v", output, testTimeout)
		}
	}
}

func TestScriptEmitsEventsInOrder(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "login", Source: `
		connect("mud.example.org", 4000)
		send("Draugr")
		send_secret("hunter2")
	`})

	requireEvent(t, actor, Connect{Host: "mud.example.org", Port: 4000})
	requireEvent(t, actor, Send{Text: "Draugr"})
	requireEvent(t, actor, SendSecret{Text: "hunter2"})
}

func TestExpectReturnsMatchingLine(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "expect", Source: `
		local line = expect("^By what name")
		send("got: " .. line)
	`})

	// Each repetition completes the previous prompt line first.
	event := feedUntilEvent(t, actor, "\r\nWelcome!\r\n\x1b[1;33mBy what name are you known?\x1b[0m ")
	if want := (Send{Text: "got: By what name are you known? "}); event != want {
		t.Errorf("got event %#v, want %#v", event, want)
	}
}

func TestExpectResolvesOnce(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "once", Source: `
		expect("tick")
		send("first")
		expect("tock")
		send("second")
	`})

	if event := feedUntilEvent(t, actor, "tick\ntick\n"); event != (Send{Text: "first"}) {
		t.Fatalf("got event %#v, want Send first", event)
	}
	request(t, actor, Output{Text: "tick\n"})
	testutil.RequireNoReceive(t, actor.Events(), 50*time.Millisecond, "tick must not satisfy the second expectation")

	if event := feedUntilEvent(t, actor, "tock\n"); event != (Send{Text: "second"}) {
		t.Fatalf("got event %#v, want Send second", event)
	}
}

func TestExpectInvalidPattern(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "bad-pattern", Source: `expect("([")`})

	err := requireError(t, actor)
	if !strings.HasPrefix(err.Error(), "run script bad-pattern: ") || !strings.Contains(err.Error(), "expect:") {
		t.Errorf("error = %q, want run script context and expect failure", err)
	}
}

func TestScriptErrorsKeepActorRunning(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"syntax", `send(`, "run script syntax: "},
		{"runtime", `error("boom")`, "boom"},
		{"bad port", `connect("localhost", 70000)`, "port 70000 out of range"},
		{"missing argument", `send()`, "run script missing argument: "},
	}
	for _, test := range tests {
		request(t, actor, Execute{Name: test.name, Source: test.source})
		if err := requireError(t, actor); !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: error = %q, want it to contain %q", test.name, err, test.want)
		}
	}

	request(t, actor, Execute{Name: "ok", Source: `send("still alive")`})
	requireEvent(t, actor, Send{Text: "still alive"})
}

func TestExecuteFile(t *testing.T) {
	t.Parallel()
	actor := startActor(t)
	path := filepath.Join(t.TempDir(), "startup.lua")
	if err := os.WriteFile(path, []byte(`send("from file")`), 0o644); err != nil {
		t.Fatal(err)
	}

	request(t, actor, ExecuteFile{Path: path})
	requireEvent(t, actor, Send{Text: "from file"})

	missing := filepath.Join(t.TempDir(), "missing.lua")
	request(t, actor, ExecuteFile{Path: missing})
	err := requireError(t, actor)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
	if !strings.HasPrefix(err.Error(), "run script "+missing) {
		t.Errorf("error = %q, want run script context", err)
	}
}

func TestSetLayout(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "layout", Source: `
		set_layout({
			type = "vstack",
			children = {
				{ type = "hstack",
				  children = { { type = "scroll", id = 1 }, { type = "scroll", id = 2 } },
				  constraints = { { percentage = 70 }, { percentage = 30 } } },
				{ type = "input" },
			},
			constraints = { { "max", 9999 }, { min = 2 } },
		})
	`})

	event := nextEvent(t, actor)
	setLayout, ok := event.(SetLayout)
	if !ok {
		t.Fatalf("got event %#v, want SetLayout", event)
	}
	want := layout.Node{
		Kind: layout.KindVStack,
		Children: []layout.Node{
			{
				Kind:        layout.KindHStack,
				Children:    []layout.Node{{Kind: layout.KindScroll, ID: 1}, {Kind: layout.KindScroll, ID: 2}},
				Constraints: []layout.Constraint{layout.Percentage(70), layout.Percentage(30)},
			},
			{Kind: layout.KindInput},
		},
		Constraints: []layout.Constraint{layout.Max(9999), layout.Min(2)},
	}
	if diff := cmp.Diff(want, setLayout.Layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestSetLayoutInvalid(t *testing.T) {
	t.Parallel()
	actor := startActor(t)

	request(t, actor, Execute{Name: "two-inputs", Source: `
		set_layout({
			type = "vstack",
			children = { { type = "scroll", id = 1 }, { type = "input" }, { type = "input" } },
		})
		send("unreachable")
	`})

	err := requireError(t, actor)
	if !strings.Contains(err.Error(), "set_layout") || !strings.Contains(err.Error(), "input") {
		t.Errorf("error = %q, want set_layout validation failure", err)
	}
	testutil.RequireNoReceive(t, actor.Events(), 50*time.Millisecond, "nothing after a failed set_layout")
}

func TestSleepUsesClock(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	actor := startActor(t, WithClock(fake))

	request(t, actor, Execute{Name: "sleepy", Source: `
		send("before")
		sleep(1500)
		send("after")
	`})

	requireEvent(t, actor, Send{Text: "before"})
	fake.WaitForTimers(1)
	testutil.RequireNoReceive(t, actor.Events(), 20*time.Millisecond, "script sleeps until the clock advances")
	fake.Advance(1500 * time.Millisecond)
	requireEvent(t, actor, Send{Text: "after"})
}

func TestLogWritesRecord(t *testing.T) {
	t.Parallel()
	var output lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&output, nil))
	actor := startActor(t, WithLogger(logger))

	request(t, actor, Execute{Name: "chatty", Source: `
		log("hello from the script")
		send("done")
	`})
	requireEvent(t, actor, Send{Text: "done"})

	logged := output.String()
	for _, want := range []string{`"msg":"hello from the script"`, `"script":"chatty"`, `"component":"automation"`} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %s:\n%s", want, logged)
		}
	}
	runID := regexp.MustCompile(`"run":"[0-9a-f-]{36}"`)
	if !runID.MatchString(logged) {
		t.Errorf("log output has no run ID:\n%s", logged)
	}
}

func TestShutdownUnwindsSuspendedScripts(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	actor := startActor(t, WithClock(fake))

	request(t, actor, Execute{Name: "waiting", Source: `
		send("waiting")
		expect("never printed")
		send("unreachable")
	`})
	request(t, actor, Execute{Name: "sleeping", Source: `
		send("sleeping")
		sleep(60000)
		send("unreachable")
	`})
	request(t, actor, Execute{Name: "spinning", Source: `
		send("spinning")
		while true do end
	`})

	started := map[Event]bool{}
	for range 3 {
		started[nextEvent(t, actor)] = true
	}
	for _, want := range []string{"waiting", "sleeping", "spinning"} {
		if !started[Send{Text: want}] {
			t.Fatalf("script %q did not start; got %v", want, started)
		}
	}

	request(t, actor, Shutdown{})
	testutil.RequireClosed(t, actor.Done(), testTimeout, "actor stops after Shutdown")

	for event := range actor.Events() {
		t.Errorf("event after Shutdown: %#v", event)
	}
}

func TestDistributeResolvesEveryMatchingWaiter(t *testing.T) {
	t.Parallel()
	actor := New()
	newWaiter := func(pattern string) waiter {
		return waiter{pattern: regexp.MustCompile(pattern), reply: make(chan string, 1)}
	}
	hp := newWaiter(`^HP:`)
	anyDigit := newWaiter(`\d+`)
	never := newWaiter(`^You die`)
	actor.waiters = []waiter{hp, never, anyDigit}

	actor.distribute("The orc hits you.\r\n\x1b[31mHP: 12/40\x1b[0m\r\n")

	for name, resolved := range map[string]waiter{"hp": hp, "digit": anyDigit} {
		select {
		case line := <-resolved.reply:
			if line != "HP: 12/40" {
				t.Errorf("%s resolved with %q, want %q", name, line, "HP: 12/40")
			}
		default:
			t.Errorf("%s was not resolved", name)
		}
	}
	if len(actor.waiters) != 1 || actor.waiters[0].pattern != never.pattern {
		t.Errorf("remaining waiters = %v, want only the unmatched one", actor.waiters)
	}
}

func TestDistributeFirstMatchingLineWins(t *testing.T) {
	t.Parallel()
	actor := New()
	pending := waiter{pattern: regexp.MustCompile(`exits`), reply: make(chan string, 1)}
	actor.waiters = []waiter{pending}

	actor.distribute("Obvious exits: north\nNo exits here\n")

	if line := <-pending.reply; line != "Obvious exits: north" {
		t.Errorf("resolved with %q, want the first matching line", line)
	}
	if len(actor.waiters) != 0 {
		t.Errorf("waiter not removed after resolving")
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		outputs []string
		want    []string
		held    string
	}{
		{"empty", []string{""}, nil, ""},
		{"single newline", []string{"\n"}, []string{""}, ""},
		{"crlf", []string{"a\r\nb\r\n"}, []string{"a", "b"}, ""},
		{"prompt fragment", []string{"line\n> "}, []string{"line", "> "}, "> "},
		{"blank line kept", []string{"a\n\nb\n"}, []string{"a", "", "b"}, ""},
		{"ansi stripped", []string{"\x1b[32mgreen\x1b[0m\n"}, []string{"green"}, ""},
		{
			name:    "line split across outputs",
			outputs: []string{"Pass", "word:\n"},
			want:    []string{"Pass", "Password:"},
		},
		{
			name:    "fragment grows",
			outputs: []string{"Pass", "word: "},
			want:    []string{"Pass", "Password: "},
			held:    "Password: ",
		},
		{
			name:    "completed prompt not repeated",
			outputs: []string{"HP:40> ", "\r\nYou see a door.\r\n"},
			want:    []string{"HP:40> ", "You see a door."},
		},
		{
			name:    "crlf split across outputs",
			outputs: []string{"Password:\r", "\n"},
			want:    []string{"Password:"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			actor := New()
			var got []string
			for _, output := range test.outputs {
				got = append(got, actor.assemble(output)...)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("assemble(%q) mismatch (-want +got):\n%s", test.outputs, diff)
			}
			if actor.partial != test.held {
				t.Errorf("held %q, want %q", actor.partial, test.held)
			}
		})
	}
}

func TestDistributeMatchesLineSplitAcrossOutputs(t *testing.T) {
	t.Parallel()
	actor := New()
	password := waiter{pattern: regexp.MustCompile(`^Password:$`), reply: make(chan string, 1)}
	actor.waiters = []waiter{password}

	actor.distribute("Pass")
	if len(actor.waiters) != 1 {
		t.Fatal("fragment resolved the waiter")
	}
	actor.distribute("word:\r\n")

	select {
	case line := <-password.reply:
		if line != "Password:" {
			t.Errorf("resolved with %q, want %q", line, "Password:")
		}
	default:
		t.Error("line completed across outputs was not matched")
	}
}

// lockedBuffer is a bytes.Buffer safe for a logger on another
// goroutine.
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}
