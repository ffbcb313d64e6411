// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package clientui

import (
	"context"
	"sync"
)

// outbox queues events from Update without blocking it and delivers
// them in order on a separate goroutine.
type outbox struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

// post queues an event. Events posted after close are dropped.
func (o *outbox) post(event Event) {
	o.mu.Lock()
	if !o.closed {
		o.queue = append(o.queue, event)
	}
	o.mu.Unlock()
	o.signal()
}

// close lets drain return once the queue is empty.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.signal()
}

func (o *outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// drain delivers queued events to events until the outbox is closed
// and empty, or ctx is cancelled. It closes events on return.
func (o *outbox) drain(ctx context.Context, events chan<- Event) {
	defer close(events)
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-o.wake:
			case <-ctx.Done():
				return
			}
			continue
		}
		event := o.queue[0]
		o.queue[0] = nil
		o.queue = o.queue[1:]
		o.mu.Unlock()

		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}
}
