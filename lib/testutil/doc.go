// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the actor packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls.
// [RequireNoReceive] is the converse: it asserts that a channel stays
// quiet, which is how tests check that an actor emitted exactly the
// events it should and nothing more.
//
// [ListenTCP] and [Accept] stand up a loopback server for tests that
// exercise a real socket.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no draugr-internal dependencies.
package testutil
