// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport opens and reads the client's server connection.
//
// [Dialer] abstracts connection establishment so the connection actor
// can be tested against in-memory or loopback peers; [TCPDialer] is the
// production implementation.
//
// [PollingReader] turns a deadline-capable connection into a reader
// whose reads never time out but still return promptly when asked to
// stop. Each underlying read waits at most one poll interval; a read
// that times out without data is retried after checking the stop
// channel. Timeouts therefore never reach the consumer, which matters
// for stream decoders such as zlib that treat any read error as
// permanent.
package transport
