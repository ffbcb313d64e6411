// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/Misza13/draugr/lib/telnet"
	"github.com/Misza13/draugr/transport"
)

// readResult is one batch from the reader goroutine. err is terminal:
// the reader sends nothing after it.
type readResult struct {
	events []telnet.Event
	err    error
}

// session is one open connection and its reader goroutine.
type session struct {
	conn    net.Conn
	address string
	decoder textDecoder

	incoming chan readResult

	stop       chan struct{}
	stopOnce   sync.Once
	readerDone chan struct{}
}

func startSession(conn net.Conn, address string, readTimeout time.Duration) *session {
	s := &session{
		conn:       conn,
		address:    address,
		incoming:   make(chan readResult, 16),
		stop:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go s.readLoop(readTimeout)
	return s
}

func (s *session) readLoop(readTimeout time.Duration) {
	defer close(s.readerDone)

	reader := telnet.NewReader(&transport.PollingReader{
		Source:   s.conn,
		Interval: readTimeout,
		Stop:     s.stop,
	})
	for {
		events, err := reader.ReadEvents()
		if errors.Is(err, transport.ErrStopped) {
			return
		}
		select {
		case s.incoming <- readResult{events: events, err: err}:
		case <-s.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// close stops the reader, closes the socket, and waits for the reader
// goroutine to exit.
func (s *session) close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.conn.Close()
	})
	<-s.readerDone
}
