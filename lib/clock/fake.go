// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// It is safe for concurrent use.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline
// order. A callback must not call Advance.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingTimer
	changed *sync.Cond
}

type pendingTimer struct {
	deadline time.Time
	channel  chan time.Time // After
	callback func()         // AfterFunc
	stopped  bool
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.now
		return channel
	}
	c.addLocked(&pendingTimer{deadline: c.now.Add(d), channel: channel})
	return channel
}

// AfterFunc schedules f. A non-positive d runs f before AfterFunc
// returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &pendingTimer{deadline: c.now.Add(d), callback: f}
	c.addLocked(timer)

	return &Timer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		index := slices.Index(c.pending, timer)
		if index < 0 {
			return false
		}
		c.pending = slices.Delete(c.pending, index, index+1)
		timer.stopped = true
		c.changed.Broadcast()
		return true
	}}
}

func (c *FakeClock) addLocked(timer *pendingTimer) {
	c.pending = append(c.pending, timer)
	c.changed.Broadcast()
}

// Advance moves time forward by d and fires every timer whose deadline
// has been reached, earliest first. Timers registered by callbacks
// fire in the same call if they fall within the new time.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		timer := c.popExpired()
		if timer == nil {
			return
		}
		if timer.callback != nil {
			timer.callback()
			continue
		}
		timer.channel <- timer.deadline
	}
}

// popExpired removes and returns the earliest expired timer, or nil.
func (c *FakeClock) popExpired() *pendingTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	earliest := -1
	for index, timer := range c.pending {
		if timer.deadline.After(c.now) {
			continue
		}
		if earliest < 0 || timer.deadline.Before(c.pending[earliest].deadline) {
			earliest = index
		}
	}
	if earliest < 0 {
		return nil
	}
	timer := c.pending[earliest]
	c.pending = slices.Delete(c.pending, earliest, earliest+1)
	c.changed.Broadcast()
	return timer
}

// WaitForTimers blocks until at least n timers are pending.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of timers that have neither fired
// nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
