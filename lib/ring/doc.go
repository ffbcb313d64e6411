// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package ring provides History, a fixed-capacity circular buffer that
// backs both the transcript scrollback and the input line's command
// history.
//
// Elements are addressed by logical index: 0 is the oldest retained
// element and Size()-1 is the newest. Inserting into a full buffer
// evicts the oldest element. FindAndPushBack implements the
// most-recently-used policy of command history: an element that is
// already present moves to the newest position instead of being
// duplicated, and the relative order of everything else is preserved.
//
// A History is owned by a single goroutine. It performs no locking.
package ring
