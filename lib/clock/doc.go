// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets time-dependent code run against a controllable
// clock in tests.
//
// Components hold a Clock instead of calling time.Now, time.After, or
// time.AfterFunc. Production wiring passes Real(); tests pass a
// FakeClock and move time forward explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go script.Run(ctx) // calls fake.After(2 * time.Second)
//	fake.WaitForTimers(1)
//	fake.Advance(2 * time.Second)
//
// WaitForTimers closes the race between a goroutine registering its
// timer and the test advancing past it.
package clock
