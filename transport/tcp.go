// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net"
	"time"
)

// Compile-time interface check.
var _ Dialer = (*TCPDialer)(nil)

// TCPDialer opens TCP connections to MUD servers.
type TCPDialer struct {
	// Timeout is the maximum time to wait for a TCP connection to be
	// established. Zero means no standalone timeout; only the context
	// deadline applies.
	Timeout time.Duration

	// KeepAlive is the TCP keep-alive period. Zero selects the
	// operating system default; negative disables keep-alives. MUD
	// sessions idle for long stretches, so the default is usually
	// wanted.
	KeepAlive time.Duration
}

// DialContext opens a TCP connection to the given address (host:port).
func (d *TCPDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	return dialer.DialContext(ctx, "tcp", address)
}
