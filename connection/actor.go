// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package connection implements the actor that owns the client's
// server connection.
//
// The actor is driven by Requests and reports everything through
// Events. It is Disconnected until a Connect succeeds and returns to
// Disconnected whenever the connection fails; a failure is reported as
// one Error event followed by a Warning "disconnected", and the actor
// keeps serving requests. Only Disconnect (while connected), Shutdown,
// or cancellation of the context passed to Run stop it.
//
// While connected, a reader goroutine decodes the telnet stream in
// short polls (see transport.PollingReader) and hands decoded events to
// the actor goroutine, which interleaves them with requests. The actor
// accepts MCCP2 compression when the server offers it, refuses every
// other option, and absorbs the end-of-prompt markers GA and EOR.
package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/Misza13/draugr/lib/telnet"
	"github.com/Misza13/draugr/transport"
)

const (
	// DefaultReadTimeout bounds each socket read.
	DefaultReadTimeout = 20 * time.Millisecond

	// DefaultDialTimeout bounds connection establishment when no
	// dialer is supplied.
	DefaultDialTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds each socket write.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultLineTerminator follows every sent line.
	DefaultLineTerminator = "\n"

	// channelCapacity is the buffer size of the request and event
	// channels.
	channelCapacity = 1024
)

// Actor owns at most one server connection. Create with New, start
// with Run.
type Actor struct {
	dialer         transport.Dialer
	readTimeout    time.Duration
	writeTimeout   time.Duration
	lineTerminator string
	logger         *slog.Logger

	requests chan Request
	events   chan Event
	done     chan struct{}

	// session is the open connection, nil while disconnected. Only
	// the Run goroutine touches it.
	session *session
}

// Option configures an Actor.
type Option func(*Actor)

// WithDialer sets the dialer used for Connect. The default is a
// transport.TCPDialer with DefaultDialTimeout.
func WithDialer(dialer transport.Dialer) Option {
	return func(actor *Actor) { actor.dialer = dialer }
}

// WithReadTimeout sets how long each socket read waits before the
// reader checks whether it should stop. The default is
// DefaultReadTimeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(actor *Actor) { actor.readTimeout = timeout }
}

// WithLineTerminator sets the bytes appended to every sent line. The
// default is DefaultLineTerminator.
func WithLineTerminator(terminator string) Option {
	return func(actor *Actor) { actor.lineTerminator = terminator }
}

// WithLogger sets the logger. The default discards records.
func WithLogger(logger *slog.Logger) Option {
	return func(actor *Actor) { actor.logger = logger }
}

// New creates an Actor. It does nothing until Run is called.
func New(options ...Option) *Actor {
	actor := &Actor{
		dialer:         &transport.TCPDialer{Timeout: DefaultDialTimeout},
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		lineTerminator: DefaultLineTerminator,
		logger:         slog.New(slog.DiscardHandler),
		requests:       make(chan Request, channelCapacity),
		events:         make(chan Event, channelCapacity),
		done:           make(chan struct{}),
	}
	for _, option := range options {
		option(actor)
	}
	actor.logger = actor.logger.With("component", "connection")
	return actor
}

// Requests returns the channel the actor reads requests from.
func (actor *Actor) Requests() chan<- Request { return actor.requests }

// Events returns the channel the actor reports on. It is closed when
// Run returns.
func (actor *Actor) Events() <-chan Event { return actor.events }

// Done returns a channel that is closed when Run returns.
func (actor *Actor) Done() <-chan struct{} { return actor.done }

// Run serves requests until the actor is stopped or ctx is cancelled.
// It must be called exactly once.
func (actor *Actor) Run(ctx context.Context) {
	defer close(actor.done)
	defer close(actor.events)
	defer actor.closeSession()

	for {
		var incoming <-chan readResult
		if actor.session != nil {
			incoming = actor.session.incoming
		}

		select {
		case <-ctx.Done():
			return
		case request := <-actor.requests:
			if stop := actor.handleRequest(ctx, request); stop {
				return
			}
		case result := <-incoming:
			actor.handleRead(ctx, result)
		}
	}
}

// handleRequest applies one request and reports whether the actor
// should stop.
func (actor *Actor) handleRequest(ctx context.Context, request Request) bool {
	switch request := request.(type) {
	case Connect:
		actor.connect(ctx, request)
	case Send:
		actor.send(ctx, request.Line)
	case Disconnect:
		if actor.session == nil {
			actor.emit(ctx, Error{Err: fmt.Errorf("disconnect: %w", ErrNotConnected)})
			return false
		}
		address := actor.session.address
		actor.closeSession()
		actor.logger.Info("disconnected by request", "address", address)
		actor.emit(ctx, Info{Message: "disconnected from " + address})
		return true
	case Shutdown:
		actor.logger.Debug("shutting down")
		return true
	default:
		actor.logger.Error("unknown request type", "type", fmt.Sprintf("%T", request))
	}
	return false
}

func (actor *Actor) connect(ctx context.Context, request Connect) {
	address := net.JoinHostPort(request.Host, strconv.Itoa(request.Port))

	if actor.session != nil {
		previous := actor.session.address
		actor.closeSession()
		actor.logger.Info("closing previous connection", "address", previous)
		actor.emit(ctx, Warning{Message: "disconnected"})
	}

	actor.emit(ctx, Info{Message: fmt.Sprintf("connecting to %s...", address)})
	actor.logger.Info("connecting", "address", address)

	conn, err := actor.dialer.DialContext(ctx, address)
	if err != nil {
		actor.logger.Warn("connect failed", "address", address, "error", err)
		actor.emit(ctx, Error{Err: fmt.Errorf("connect to %s: %w", address, err)})
		return
	}

	actor.session = startSession(conn, address, actor.readTimeout)
	actor.logger.Info("connected", "address", address)
	actor.emit(ctx, Info{Message: "connected to " + address})
}

func (actor *Actor) send(ctx context.Context, line string) {
	if actor.session == nil {
		actor.emit(ctx, Error{Err: fmt.Errorf("send: %w", ErrNotConnected)})
		return
	}
	payload := telnet.EscapeData([]byte(line + actor.lineTerminator))
	if err := actor.write(payload); err != nil {
		actor.fail(ctx, fmt.Errorf("write to %s: %w", actor.session.address, err))
	}
}

func (actor *Actor) write(payload []byte) error {
	conn := actor.session.conn
	if err := conn.SetWriteDeadline(time.Now().Add(actor.writeTimeout)); err != nil {
		return err
	}
	_, err := conn.Write(payload)
	return err
}

// handleRead processes one batch from the reader goroutine.
func (actor *Actor) handleRead(ctx context.Context, result readResult) {
	for _, event := range result.events {
		if err := actor.handleTelnetEvent(ctx, event); err != nil {
			actor.fail(ctx, err)
			return
		}
	}

	switch {
	case result.err == nil:
	case errors.Is(result.err, io.EOF):
		actor.fail(ctx, fmt.Errorf("read from %s: connection closed by server", actor.session.address))
	default:
		actor.fail(ctx, fmt.Errorf("read from %s: %w", actor.session.address, result.err))
	}
}

func (actor *Actor) handleTelnetEvent(ctx context.Context, event telnet.Event) error {
	switch event.Kind {
	case telnet.EventData:
		text, err := actor.session.decoder.decode(event.Data)
		if err != nil {
			return err
		}
		if text != "" {
			actor.emit(ctx, Data{Text: text})
		}

	case telnet.EventNegotiation:
		return actor.negotiate(ctx, event)

	case telnet.EventSubnegotiation:
		if event.Option == telnet.OptionCompress2 {
			actor.logger.Info("compression enabled")
			actor.emit(ctx, Info{Message: "MCCP2 compression enabled"})
			return nil
		}
		actor.logger.Debug("ignoring subnegotiation", "option", telnet.OptionName(event.Option), "length", len(event.Data))

	case telnet.EventCompressionEnd:
		actor.logger.Info("compression ended")
		actor.emit(ctx, Info{Message: "MCCP2 compression ended"})

	case telnet.EventCommand:
		if event.Command == telnet.GA || event.Command == telnet.EOR {
			return nil
		}
		actor.emit(ctx, Unhandled{Event: event})

	default:
		actor.emit(ctx, Unhandled{Event: event})
	}
	return nil
}

// negotiate answers option offers: MCCP2 is accepted, everything else
// refused. Acknowledgements (WONT, DONT) need no reply.
func (actor *Actor) negotiate(ctx context.Context, event telnet.Event) error {
	var reply []byte
	if event.Action == telnet.WILL && event.Option == telnet.OptionCompress2 {
		actor.emit(ctx, Info{Message: "server offers MCCP2 compression"})
		reply = telnet.Negotiation(telnet.DO, telnet.OptionCompress2)
	} else {
		reply = telnet.Refusal(event.Action, event.Option)
	}

	actor.logger.Debug("negotiation", "received", event.String(), "replied", len(reply) > 0)
	if reply == nil {
		return nil
	}
	if err := actor.write(reply); err != nil {
		return fmt.Errorf("negotiate %s with %s: %w", telnet.OptionName(event.Option), actor.session.address, err)
	}
	return nil
}

// fail tears down the connection after an I/O or decode failure.
func (actor *Actor) fail(ctx context.Context, err error) {
	actor.logger.Warn("connection failed", "address", actor.session.address, "error", err)
	actor.closeSession()
	actor.emit(ctx, Error{Err: err})
	actor.emit(ctx, Warning{Message: "disconnected"})
}

func (actor *Actor) closeSession() {
	if actor.session == nil {
		return
	}
	actor.session.close()
	actor.session = nil
}

// emit delivers an event unless ctx is cancelled first.
func (actor *Actor) emit(ctx context.Context, event Event) {
	select {
	case actor.events <- event:
	case <-ctx.Done():
	}
}
