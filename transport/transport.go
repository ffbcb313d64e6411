// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net"
)

// Dialer opens connections to servers.
type Dialer interface {
	// DialContext opens a network connection to address (host:port).
	DialContext(ctx context.Context, address string) (net.Conn, error)
}
