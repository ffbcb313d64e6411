// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"fmt"
	"unicode/utf8"
)

// textDecoder converts received bytes to text. A multi-byte character
// split across reads is held back until its remaining bytes arrive;
// any other invalid sequence is an error.
type textDecoder struct {
	pending []byte
}

func (decoder *textDecoder) decode(data []byte) (string, error) {
	combined := append(decoder.pending, data...)
	decoder.pending = nil

	if utf8.Valid(combined) {
		return string(combined), nil
	}

	// Find the start of the last character and check whether the only
	// problem is that it is incomplete.
	start := len(combined) - 1
	for start > 0 && len(combined)-start < utf8.UTFMax && !utf8.RuneStart(combined[start]) {
		start--
	}
	tail := combined[start:]
	if utf8.RuneStart(combined[start]) && !utf8.FullRune(tail) && utf8.Valid(combined[:start]) {
		decoder.pending = append([]byte(nil), tail...)
		return string(combined[:start]), nil
	}

	return "", fmt.Errorf("decode server text: invalid UTF-8 in %q", truncate(combined, 32))
}

func truncate(data []byte, limit int) []byte {
	if len(data) > limit {
		return data[:limit]
	}
	return data
}
