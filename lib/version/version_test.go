// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFormatUsesVCSSettings(t *testing.T) {
	if GitCommit != "unknown" {
		t.Skip("commit injected via -ldflags")
	}
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
	}

	got := format(settings)

	want := Version + " (0123456789ab-dirty, 2026-03-01T12:00:00Z)"
	if BuildTime != "unknown" {
		want = Version + " (0123456789ab-dirty, " + BuildTime + ")"
	}
	if got != want {
		t.Errorf("format() = %q, want %q", got, want)
	}
}

func TestFormatWithoutSettings(t *testing.T) {
	got := format(nil)
	if !strings.HasPrefix(got, Version+" (") {
		t.Errorf("format(nil) = %q, want prefix %q", got, Version+" (")
	}
}

func TestFull(t *testing.T) {
	if got := Full(); !strings.Contains(got, "Go: ") || !strings.Contains(got, "Platform: ") {
		t.Errorf("Full() = %q, missing Go or Platform line", got)
	}
}
