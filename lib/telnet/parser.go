// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package telnet

import "fmt"

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventData is application data with IAC escaping removed.
	EventData EventKind = iota

	// EventNegotiation is IAC WILL/WONT/DO/DONT <option>.
	EventNegotiation

	// EventSubnegotiation is IAC SB <option> <payload> IAC SE.
	EventSubnegotiation

	// EventCommand is any other two-byte IAC command, such as GA.
	EventCommand

	// EventCompressionEnd is produced by Reader, not read from the wire:
	// the server finished its MCCP2 stream and the connection is back to
	// plain bytes.
	EventCompressionEnd
)

// Event is one unit of the telnet stream.
type Event struct {
	Kind EventKind

	// Data is the payload of EventData and EventSubnegotiation.
	Data []byte

	// Action is WILL, WONT, DO, or DONT for EventNegotiation.
	Action byte

	// Option is set for EventNegotiation and EventSubnegotiation.
	Option byte

	// Command is set for EventCommand.
	Command byte
}

func (event Event) String() string {
	switch event.Kind {
	case EventData:
		return fmt.Sprintf("data(%d bytes)", len(event.Data))
	case EventNegotiation:
		return fmt.Sprintf("IAC %s %s", CommandName(event.Action), OptionName(event.Option))
	case EventSubnegotiation:
		return fmt.Sprintf("IAC SB %s (%d bytes) IAC SE", OptionName(event.Option), len(event.Data))
	case EventCommand:
		return "IAC " + CommandName(event.Command)
	case EventCompressionEnd:
		return "end of compressed stream"
	default:
		return fmt.Sprintf("event(%d)", int(event.Kind))
	}
}

// maxSubnegotiationLength bounds the payload buffered for one SB frame.
// Bytes beyond it are dropped; GMCP and MSDP frames are far smaller.
const maxSubnegotiationLength = 64 * 1024

type parserState int

const (
	stateData parserState = iota
	stateCommand
	stateNegotiationOption
	stateSubnegotiationOption
	stateSubnegotiationData
	stateSubnegotiationCommand
)

// parser is an incremental telnet parser. Sequences may be split across
// any number of feed calls.
type parser struct {
	state  parserState
	action byte

	option         byte
	subnegotiation []byte
}

// feed parses chunk and returns the events it completes. Data that ends
// the chunk is returned as its own event rather than held back.
//
// When stopAtCompression is set, parsing stops immediately after an
// IAC SB COMPRESS2 IAC SE frame: every byte after it belongs to the
// compressed stream. consumed reports how many bytes of chunk were
// parsed, and compress reports whether parsing stopped for that reason.
// Events never alias chunk.
func (p *parser) feed(chunk []byte, stopAtCompression bool) (events []Event, consumed int, compress bool) {
	var data []byte
	flushData := func() {
		if len(data) > 0 {
			events = append(events, Event{Kind: EventData, Data: data})
			data = nil
		}
	}

	for index, b := range chunk {
		switch p.state {
		case stateData:
			if b == IAC {
				p.state = stateCommand
			} else {
				data = append(data, b)
			}

		case stateCommand:
			switch b {
			case IAC:
				data = append(data, IAC)
				p.state = stateData
			case WILL, WONT, DO, DONT:
				p.action = b
				p.state = stateNegotiationOption
			case SB:
				p.state = stateSubnegotiationOption
			default:
				flushData()
				events = append(events, Event{Kind: EventCommand, Command: b})
				p.state = stateData
			}

		case stateNegotiationOption:
			flushData()
			events = append(events, Event{Kind: EventNegotiation, Action: p.action, Option: b})
			p.state = stateData

		case stateSubnegotiationOption:
			p.option = b
			p.subnegotiation = nil
			p.state = stateSubnegotiationData

		case stateSubnegotiationData:
			if b == IAC {
				p.state = stateSubnegotiationCommand
			} else {
				p.appendSubnegotiation(b)
			}

		case stateSubnegotiationCommand:
			switch b {
			case SE:
				flushData()
				events = append(events, Event{
					Kind:   EventSubnegotiation,
					Option: p.option,
					Data:   p.subnegotiation,
				})
				p.subnegotiation = nil
				p.state = stateData
				if stopAtCompression && p.option == OptionCompress2 {
					return events, index + 1, true
				}
			case IAC:
				p.appendSubnegotiation(IAC)
				p.state = stateSubnegotiationData
			default:
				// Malformed frame; keep the byte and carry on until SE.
				p.appendSubnegotiation(b)
				p.state = stateSubnegotiationData
			}
		}
	}

	flushData()
	return events, len(chunk), false
}

func (p *parser) appendSubnegotiation(b byte) {
	if len(p.subnegotiation) < maxSubnegotiationLength {
		p.subnegotiation = append(p.subnegotiation, b)
	}
}
