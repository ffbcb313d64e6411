// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"io"
	"net"
	"time"
)

// ErrStopped is returned by PollingReader.Read once its stop channel is
// closed.
var ErrStopped = errors.New("transport: reader stopped")

// DeadlineReader is a reader with per-read deadlines. net.Conn
// satisfies it.
type DeadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// PollingReader reads from a DeadlineReader in bounded waits. Read
// blocks until data arrives, a non-timeout error occurs, or Stop is
// closed.
type PollingReader struct {
	// Source is the underlying connection.
	Source DeadlineReader

	// Interval bounds each underlying read. Must be positive.
	Interval time.Duration

	// Stop, when closed, makes the next poll return ErrStopped.
	Stop <-chan struct{}
}

// Read implements io.Reader. Timeouts are retried, never returned.
func (reader *PollingReader) Read(buffer []byte) (int, error) {
	for {
		select {
		case <-reader.Stop:
			return 0, ErrStopped
		default:
		}

		if err := reader.Source.SetReadDeadline(time.Now().Add(reader.Interval)); err != nil {
			return 0, err
		}
		bytesRead, err := reader.Source.Read(buffer)
		if bytesRead > 0 {
			// A timeout or EOF accompanying data resurfaces on the
			// next call.
			return bytesRead, nil
		}
		if err == nil {
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}
		return 0, err
	}
}
