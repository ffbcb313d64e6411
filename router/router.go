// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package router couples the connection actor, the automation actor,
// and the presentation layer.
//
// The router owns no state beyond the three endpoints. It waits on all
// three event channels at once and handles each event to completion,
// sending the requests it implies in order, before taking the next.
// Events from one collaborator are therefore handled in the order they
// were emitted; events from different collaborators have no relative
// priority.
//
// A collaborator whose event channel closes simply stops being read.
// A collaborator that has exited while the router still has a request
// for it is fatal: Run returns an error wrapping
// ErrCollaboratorStopped.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Misza13/draugr/automation"
	"github.com/Misza13/draugr/connection"
	"github.com/Misza13/draugr/lib/clientui"
	"github.com/Misza13/draugr/lib/layout"
)

// ErrCollaboratorStopped is wrapped by the error Run returns when a
// request could not be delivered because its target has exited, or
// when every event channel has closed without a Quit.
var ErrCollaboratorStopped = errors.New("collaborator stopped")

// DefaultSecretMask replaces secret lines in the transcript echo.
const DefaultSecretMask = "*****"

// Endpoint is one collaborator as the router sees it. The connection
// actor, the automation actor, and clientui.UI all satisfy it.
type Endpoint[Request, Event any] interface {
	Requests() chan<- Request
	Events() <-chan Event
	Done() <-chan struct{}
}

// Router forwards events between the collaborators. Create with New,
// start with Run.
type Router struct {
	connection   Endpoint[connection.Request, connection.Event]
	automation   Endpoint[automation.Request, automation.Event]
	presentation Endpoint[clientui.Request, clientui.Event]

	secretMask string
	logger     *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithSecretMask sets the text echoed in place of a secret line. The
// default is DefaultSecretMask.
func WithSecretMask(mask string) Option {
	return func(router *Router) { router.secretMask = mask }
}

// WithLogger sets the logger. The default discards records.
func WithLogger(logger *slog.Logger) Option {
	return func(router *Router) { router.logger = logger }
}

// New creates a Router over the three collaborators.
func New(
	connectionEndpoint Endpoint[connection.Request, connection.Event],
	automationEndpoint Endpoint[automation.Request, automation.Event],
	presentationEndpoint Endpoint[clientui.Request, clientui.Event],
	options ...Option,
) *Router {
	router := &Router{
		connection:   connectionEndpoint,
		automation:   automationEndpoint,
		presentation: presentationEndpoint,
		secretMask:   DefaultSecretMask,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(router)
	}
	router.logger = router.logger.With("component", "router")
	return router
}

// errQuit ends the loop after an orderly shutdown.
var errQuit = errors.New("quit")

// Run routes events until the presentation layer reports Quit, a
// collaborator stops unexpectedly, or ctx is cancelled. It returns nil
// after Quit, once Shutdown has been sent to the connection and then
// to the automation actor.
func (router *Router) Run(ctx context.Context) error {
	connectionEvents := router.connection.Events()
	automationEvents := router.automation.Events()
	presentationEvents := router.presentation.Events()

	for {
		if connectionEvents == nil && automationEvents == nil && presentationEvents == nil {
			return fmt.Errorf("all event channels closed: %w", ErrCollaboratorStopped)
		}

		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-connectionEvents:
			if !ok {
				router.logger.Info("connection events closed")
				connectionEvents = nil
				continue
			}
			err = router.handleConnection(ctx, event)

		case event, ok := <-automationEvents:
			if !ok {
				router.logger.Info("automation events closed")
				automationEvents = nil
				continue
			}
			err = router.handleAutomation(ctx, event)

		case event, ok := <-presentationEvents:
			if !ok {
				router.logger.Info("presentation events closed")
				presentationEvents = nil
				continue
			}
			err = router.handlePresentation(ctx, event)
		}

		if errors.Is(err, errQuit) {
			router.logger.Info("quit requested, collaborators shut down")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (router *Router) handleConnection(ctx context.Context, event connection.Event) error {
	switch event := event.(type) {
	case connection.Data:
		if err := router.present(ctx, clientui.Print{Text: event.Text, Pane: layout.DefaultPaneID}); err != nil {
			return err
		}
		return router.automate(ctx, automation.Output{Text: event.Text})
	case connection.Unhandled:
		return router.present(ctx, clientui.PrintWarning{Message: "unhandled telnet event: " + event.Event.String()})
	case connection.Info:
		return router.present(ctx, clientui.PrintInfo{Message: event.Message})
	case connection.Warning:
		return router.present(ctx, clientui.PrintWarning{Message: event.Message})
	case connection.Error:
		return router.present(ctx, clientui.PrintError{Message: fmt.Sprintf("connection error: %v", event.Err)})
	default:
		router.logger.Warn("ignoring unknown connection event", "type", fmt.Sprintf("%T", event))
		return nil
	}
}

func (router *Router) handleAutomation(ctx context.Context, event automation.Event) error {
	switch event := event.(type) {
	case automation.Connect:
		return router.connect(ctx, connection.Connect{Host: event.Host, Port: event.Port})
	case automation.Send:
		return router.send(ctx, event.Text, event.Text)
	case automation.SendSecret:
		return router.send(ctx, event.Text, router.secretMask)
	case automation.SetLayout:
		return router.present(ctx, clientui.SetLayout{Layout: event.Layout})
	case automation.Error:
		return router.present(ctx, clientui.PrintError{Message: fmt.Sprintf("script error: %v", event.Err)})
	default:
		router.logger.Warn("ignoring unknown automation event", "type", fmt.Sprintf("%T", event))
		return nil
	}
}

func (router *Router) handlePresentation(ctx context.Context, event clientui.Event) error {
	switch event := event.(type) {
	case clientui.Send:
		return router.send(ctx, event.Text, event.Text)
	case clientui.SendSecret:
		return router.send(ctx, event.Text, router.secretMask)
	case clientui.Quit:
		return router.quit(ctx)
	default:
		router.logger.Warn("ignoring unknown presentation event", "type", fmt.Sprintf("%T", event))
		return nil
	}
}

// send writes line to the server and echoes it into the transcript.
func (router *Router) send(ctx context.Context, line, echo string) error {
	if err := router.connect(ctx, connection.Send{Line: line}); err != nil {
		return err
	}
	return router.present(ctx, clientui.PrintUserInput{Text: echo, Pane: layout.DefaultPaneID})
}

func (router *Router) connect(ctx context.Context, request connection.Request) error {
	return deliver(ctx, router.connection, request, "connection")
}

func (router *Router) automate(ctx context.Context, request automation.Request) error {
	return deliver(ctx, router.automation, request, "automation")
}

// quit shuts down the connection and then the automation actor, and
// returns errQuit once both requests are sent.
func (router *Router) quit(ctx context.Context) error {
	if err := router.connect(ctx, connection.Shutdown{}); err != nil {
		return err
	}
	if err := router.automate(ctx, automation.Shutdown{}); err != nil {
		return err
	}
	return errQuit
}

// present delivers request to the presentation layer. The presentation
// layer exits right after reporting Quit, so a failed delivery checks
// for a Quit still queued behind other events and honors it.
func (router *Router) present(ctx context.Context, request clientui.Request) error {
	err := deliver(ctx, router.presentation, request, "presentation")
	if errors.Is(err, ErrCollaboratorStopped) && router.quitPending() {
		router.logger.Debug("presentation exited with quit pending", "dropped", fmt.Sprintf("%T", request))
		return router.quit(ctx)
	}
	return err
}

// quitPending reads the presentation events already queued and
// reports whether they include Quit. Lines submitted before the Quit
// are still sent to the server.
func (router *Router) quitPending() bool {
	for {
		select {
		case event, ok := <-router.presentation.Events():
			if !ok {
				return false
			}
			switch event := event.(type) {
			case clientui.Quit:
				return true
			case clientui.Send:
				router.deliverLate(connection.Send{Line: event.Text})
			case clientui.SendSecret:
				router.deliverLate(connection.Send{Line: event.Text})
			}
		default:
			return false
		}
	}
}

// deliverLate sends to the connection without waiting.
func (router *Router) deliverLate(request connection.Request) {
	select {
	case router.connection.Requests() <- request:
	default:
		router.logger.Warn("dropping line submitted before quit", "type", fmt.Sprintf("%T", request))
	}
}

// deliver sends request to endpoint, failing when the endpoint has
// already exited.
func deliver[Request, Event any](ctx context.Context, endpoint Endpoint[Request, Event], request Request, name string) error {
	select {
	case <-endpoint.Done():
		return fmt.Errorf("sending %T to %s: %w", request, name, ErrCollaboratorStopped)
	default:
	}
	select {
	case endpoint.Requests() <- request:
		return nil
	case <-endpoint.Done():
		return fmt.Errorf("sending %T to %s: %w", request, name, ErrCollaboratorStopped)
	case <-ctx.Done():
		return ctx.Err()
	}
}
