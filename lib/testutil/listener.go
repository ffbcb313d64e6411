// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net"
	"strconv"
	"testing"
	"time"
)

// ListenTCP opens a TCP listener on a random loopback port and returns
// it with its host and port. The listener is closed when the test
// completes.
func ListenTCP(t testing.TB) (listener net.Listener, host string, port int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	host, portText, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		t.Fatalf("split listener address: %v", err)
	}
	port, err = strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("parse listener port: %v", err)
	}
	return listener, host, port
}

// Accept waits up to timeout for one connection on listener. The
// connection is closed when the test completes.
func Accept(t testing.TB, listener net.Listener, timeout time.Duration) net.Conn {
	t.Helper()
	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := listener.Accept()
		accepted <- result{conn, err}
	}()

	outcome := RequireReceive(t, accepted, timeout, "waiting for client connection")
	if outcome.err != nil {
		t.Fatalf("accept: %v", outcome.err)
	}
	t.Cleanup(func() { outcome.conn.Close() })
	return outcome.conn
}
