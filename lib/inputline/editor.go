// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package inputline implements the text-entry state machine behind the
// client's input line: free typing with a rune-indexed cursor, and a
// prefix search through previously submitted lines.
package inputline

import (
	"strings"
	"unicode/utf8"

	"github.com/Misza13/draugr/lib/ring"
)

// DefaultHistoryCapacity is the number of submitted lines retained for
// history search.
const DefaultHistoryCapacity = 1000

// mode discriminates the two editor states.
type mode int

const (
	// typing: the user edits text with a cursor.
	typing mode = iota

	// historySearch: text is a query and matched is the logical index
	// of the history entry the query currently completes to.
	historySearch
)

// Editor is the input line state machine. The zero value is not usable;
// call New.
//
// In the typing state, text is the buffer and cursor a rune offset into
// it. In the history search state, text is the typed query and matched
// indexes the history entry being offered as a completion. Every
// position is counted in runes, never bytes.
//
// Editor owns its history exclusively and is not safe for concurrent
// use.
type Editor struct {
	mode    mode
	text    string
	cursor  int
	matched int

	history *ring.History[string]
}

// New creates an empty editor remembering up to historyCapacity
// submitted lines. A non-positive capacity selects
// DefaultHistoryCapacity.
func New(historyCapacity int) *Editor {
	if historyCapacity <= 0 {
		historyCapacity = DefaultHistoryCapacity
	}
	return &Editor{history: ring.New[string](historyCapacity)}
}

// InHistorySearch reports whether the editor is offering a history
// completion.
func (editor *Editor) InHistorySearch() bool { return editor.mode == historySearch }

// View returns what the input line displays: the input text, the inline
// completion suggestion to draw after it (empty while typing), and the
// cursor position in runes.
func (editor *Editor) View() (input, completion string, cursor int) {
	if editor.mode == typing {
		return editor.text, "", editor.cursor
	}
	entry := editor.matchedEntry()
	if editor.text == "" {
		return entry, "", utf8.RuneCountInString(entry)
	}
	return editor.text, strings.TrimPrefix(entry, editor.text), utf8.RuneCountInString(editor.text)
}

// History returns the remembered lines, newest first.
func (editor *Editor) History() []string {
	lines := make([]string, 0, editor.history.Size())
	for line := range editor.history.IterFromBack() {
		lines = append(lines, line)
	}
	return lines
}

// TypeText inserts text at the cursor. Ignored during history search.
func (editor *Editor) TypeText(text string) {
	if editor.mode != typing {
		return
	}
	editor.text = insertAt(editor.text, text, editor.cursor)
	editor.cursor += utf8.RuneCountInString(text)
}

// Backspace removes the rune before the cursor.
func (editor *Editor) Backspace() {
	editor.cancelHistorySearch()
	if editor.cursor > 0 {
		editor.text = deleteAt(editor.text, editor.cursor-1)
		editor.cursor--
	}
}

// Delete removes the rune under the cursor.
func (editor *Editor) Delete() {
	editor.cancelHistorySearch()
	editor.text = deleteAt(editor.text, editor.cursor)
}

// Left moves the cursor one rune toward the start.
func (editor *Editor) Left() {
	editor.cancelHistorySearch()
	if editor.cursor > 0 {
		editor.cursor--
	}
}

// Home moves the cursor to the start of the line.
func (editor *Editor) Home() {
	editor.cancelHistorySearch()
	editor.cursor = 0
}

// Right moves the cursor one rune toward the end. During history search
// it accepts the whole matched entry instead.
func (editor *Editor) Right() {
	if editor.mode == historySearch {
		editor.commitHistorySearch()
		return
	}
	if editor.cursor < utf8.RuneCountInString(editor.text) {
		editor.cursor++
	}
}

// End moves the cursor to the end of the line. During history search it
// accepts the whole matched entry instead.
func (editor *Editor) End() {
	if editor.mode == historySearch {
		editor.commitHistorySearch()
		return
	}
	editor.cursor = utf8.RuneCountInString(editor.text)
}

// Up offers the next older history entry starting with the typed text.
// Nothing changes when there is no such entry.
func (editor *Editor) Up() {
	if editor.history.IsEmpty() {
		return
	}

	startAt := editor.history.Size() - 1
	if editor.mode == historySearch {
		if editor.matched == 0 {
			return
		}
		startAt = editor.matched - 1
	}

	query := editor.text
	index, found := editor.history.SearchTowardOldest(hasPrefix(query), startAt)
	if !found {
		return
	}
	editor.mode = historySearch
	editor.text = query
	editor.cursor = 0
	editor.matched = index
}

// Down offers the next newer history entry starting with the query.
// Running out of newer entries returns to typing with the query as the
// buffer, so a non-matching entry is never shown.
func (editor *Editor) Down() {
	if editor.mode != historySearch {
		return
	}
	if index, found := editor.history.SearchTowardNewest(hasPrefix(editor.text), editor.matched+1); found {
		editor.matched = index
		return
	}
	editor.setTyping(editor.text)
}

// Cancel leaves history search keeping only the typed query, or clears
// the buffer while typing.
func (editor *Editor) Cancel() {
	if editor.mode == historySearch {
		editor.setTyping(editor.text)
		return
	}
	editor.setTyping("")
}

// Submit returns the line to send and records it in history, promoting
// an earlier identical line rather than duplicating it. Empty typed
// lines are returned but not recorded. The editor is reset.
func (editor *Editor) Submit() string {
	line := editor.displayed()
	if editor.mode == historySearch || line != "" {
		editor.history.FindAndPushBack(line)
	}
	editor.setTyping("")
	return line
}

// Clear returns the displayed line without recording it in history and
// resets the editor. Used for secret input.
func (editor *Editor) Clear() string {
	line := editor.displayed()
	editor.setTyping("")
	return line
}

// displayed is the text the user sees as their line: the buffer while
// typing, otherwise the query, or the matched entry when the query is
// empty.
func (editor *Editor) displayed() string {
	if editor.mode == historySearch && editor.text == "" {
		return editor.matchedEntry()
	}
	return editor.text
}

func (editor *Editor) matchedEntry() string {
	entry, _ := editor.history.Get(editor.matched)
	return entry
}

func (editor *Editor) cancelHistorySearch() {
	if editor.mode == historySearch {
		editor.setTyping(editor.displayed())
	}
}

func (editor *Editor) commitHistorySearch() {
	editor.setTyping(editor.matchedEntry())
}

// setTyping enters the typing state with the cursor at the end of text.
func (editor *Editor) setTyping(text string) {
	editor.mode = typing
	editor.text = text
	editor.cursor = utf8.RuneCountInString(text)
	editor.matched = 0
}

func hasPrefix(prefix string) func(string) bool {
	return func(entry string) bool { return strings.HasPrefix(entry, prefix) }
}

// byteOffset converts a rune position into a byte offset within text.
// The second result is false when position is past the end.
func byteOffset(text string, position int) (int, bool) {
	if position < 0 {
		return 0, false
	}
	runes := 0
	for offset := range text {
		if runes == position {
			return offset, true
		}
		runes++
	}
	return len(text), runes == position
}

// insertAt inserts insertion at a rune position. Out-of-range positions
// leave text unchanged.
func insertAt(text, insertion string, position int) string {
	offset, ok := byteOffset(text, position)
	if !ok {
		return text
	}
	return text[:offset] + insertion + text[offset:]
}

// deleteAt removes the rune at a rune position. Out-of-range positions
// leave text unchanged.
func deleteAt(text string, position int) string {
	offset, ok := byteOffset(text, position)
	if !ok || offset == len(text) {
		return text
	}
	_, width := utf8.DecodeRuneInString(text[offset:])
	return text[:offset] + text[offset+width:]
}
