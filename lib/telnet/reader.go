// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package telnet

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// readBufferSize is the size of the buffer between the connection and
// the parser, and of the inflated-output scratch buffer.
const readBufferSize = 32 * 1024

// Reader decodes a telnet stream into Events.
//
// When the server sends IAC SB COMPRESS2 IAC SE, every following byte
// is part of a zlib stream (MCCP2). Reader switches to inflating
// transparently; the bytes after SE that were already read stay in the
// input buffer and are the first bytes the inflater sees. When the zlib
// stream ends, Reader emits EventCompressionEnd and returns to reading
// plain bytes.
//
// Reader only reads. Negotiation replies (such as DO COMPRESS2) are the
// caller's business.
type Reader struct {
	input *bufio.Reader

	// inflater is non-nil while an MCCP2 stream is active.
	inflater io.ReadCloser

	// startInflating is set when a compression frame has been parsed
	// but the zlib header has not been read yet. The header read can
	// block, so it is deferred until the events preceding it have been
	// delivered.
	startInflating bool

	inflated []byte
	parser   parser
}

// NewReader creates a Reader decoding the stream from source.
func NewReader(source io.Reader) *Reader {
	return &Reader{
		input:    bufio.NewReaderSize(source, readBufferSize),
		inflated: make([]byte, readBufferSize),
	}
}

// Compressed reports whether an MCCP2 stream is active.
func (reader *Reader) Compressed() bool {
	return reader.inflater != nil || reader.startInflating
}

// ReadEvents blocks until at least one event is decoded and returns the
// events in stream order. Events that were decoded before a failure are
// returned together with the error. io.EOF is returned unwrapped when
// the peer closes the plain stream.
func (reader *Reader) ReadEvents() ([]Event, error) {
	for {
		if reader.startInflating {
			reader.startInflating = false
			inflater, err := zlib.NewReader(reader.input)
			if err != nil {
				return nil, fmt.Errorf("start compressed stream: %w", err)
			}
			reader.inflater = inflater
		}

		var events []Event
		var err error
		if reader.inflater != nil {
			events, err = reader.readCompressed()
		} else {
			events, err = reader.readPlain()
		}
		if len(events) > 0 || err != nil {
			return events, err
		}
	}
}

func (reader *Reader) readPlain() ([]Event, error) {
	// Peek rather than Read so that bytes after a compression frame
	// remain in the buffer for the inflater.
	if reader.input.Buffered() == 0 {
		if _, err := reader.input.Peek(1); err != nil {
			return nil, err
		}
	}
	chunk, _ := reader.input.Peek(reader.input.Buffered())
	events, consumed, compress := reader.parser.feed(chunk, true)
	if _, err := reader.input.Discard(consumed); err != nil {
		return events, fmt.Errorf("discard parsed bytes: %w", err)
	}
	reader.startInflating = compress
	return events, nil
}

func (reader *Reader) readCompressed() ([]Event, error) {
	bytesRead, readErr := reader.inflater.Read(reader.inflated)
	events, _, _ := reader.parser.feed(reader.inflated[:bytesRead], false)

	if errors.Is(readErr, io.EOF) {
		closeErr := reader.inflater.Close()
		reader.inflater = nil
		events = append(events, Event{Kind: EventCompressionEnd})
		if closeErr != nil {
			return events, fmt.Errorf("close compressed stream: %w", closeErr)
		}
		return events, nil
	}
	if readErr != nil {
		return events, fmt.Errorf("inflate compressed stream: %w", readErr)
	}
	return events, nil
}
