// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), epoch.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFakeAfter(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-channel:
		if want := epoch.Add(3 * time.Second); !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if count := fake.PendingCount(); count != 0 {
		t.Errorf("PendingCount() = %d after firing, want 0", count)
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-fake.After(d):
		default:
			t.Errorf("After(%v) did not deliver immediately", d)
		}
	}
}

func TestFakeAfterFuncOrder(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	var order []string
	fake.AfterFunc(3*time.Second, func() { order = append(order, "third") })
	fake.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	fake.AfterFunc(2*time.Second, func() {
		order = append(order, "second")
		fake.AfterFunc(500*time.Millisecond, func() { order = append(order, "nested") })
	})

	fake.Advance(5 * time.Second)

	want := []string{"first", "second", "nested", "third"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for index := range want {
		if order[index] != want[index] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	called := false
	timer := fake.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Error("Stop() on a pending timer = false, want true")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}
	fake.Advance(time.Minute)
	if called {
		t.Error("stopped callback ran")
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)
	woke := make(chan struct{})
	go func() {
		<-fake.After(10 * time.Second)
		close(woke)
	}()

	fake.WaitForTimers(1)
	fake.Advance(10 * time.Second)

	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine blocked on After did not wake")
	}
}

func TestRealAfterFunc(t *testing.T) {
	t.Parallel()
	fired := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("real AfterFunc did not fire")
	}
}
