// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command model and the palette
// matcher for the parley TUI.
package commands

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// =============================================================================
// KEY DESCRIPTOR
// =============================================================================

// Key identifies a key press the matcher cares about.
type Key int

const (
	// KeyOther is any key the matcher does not own.
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyTab
	KeyEscape
)

// KeyPress is a structured key-press descriptor handed to the matcher by
// the host input box.
type KeyPress struct {
	Key   Key
	Shift bool
	Ctrl  bool
	Alt   bool
}

// KeyResult reports whether the matcher consumed a key press. The host
// continues its own processing only on KeyIgnored.
type KeyResult int

const (
	// KeyIgnored means the key was not consumed; the host input box should
	// apply its default behavior.
	KeyIgnored KeyResult = iota

	// KeyHandled means the matcher consumed the key.
	KeyHandled
)

// IsHandled returns true if the key was consumed by the matcher.
func (r KeyResult) IsHandled() bool {
	return r == KeyHandled
}

// =============================================================================
// MATCHER
// =============================================================================

// Trigger is the character that activates command-filtering mode.
const Trigger = '/'

// Matcher filters the known command set by the text in the host input box,
// ranks matches, and owns the selection cursor over the result.
//
// All methods run synchronously on the caller's goroutine; a Matcher is
// owned by a single palette instance and is not safe for concurrent use.
type Matcher struct {
	// commands is the full working set, in fetch order.
	commands []Command

	// query is the raw input text, including the trigger character.
	query string

	// filtered is the ranked subset derived from query.
	filtered []Command

	// selected indexes into filtered; meaningless when filtered is empty.
	selected int

	// onSelect is invoked when the user accepts a command.
	onSelect func(Command)

	// onClose is invoked when the user dismisses the palette.
	onClose func()

	// collator breaks ranking ties with a locale-aware comparison.
	collator *collate.Collator
}

// NewMatcher creates a matcher with the given selection and close
// callbacks. Either callback may be nil.
func NewMatcher(onSelect func(Command), onClose func()) *Matcher {
	return &Matcher{
		onSelect: onSelect,
		onClose:  onClose,
		collator: collate.New(language.Und),
	}
}

// SetCommands replaces the working set wholesale and recomputes the
// filtered list against the current query.
func (m *Matcher) SetCommands(cmds []Command) {
	m.commands = cmds
	m.recompute()
}

// SetQuery updates the raw input text and recomputes the filtered list.
// Only strings beginning with the trigger character produce results; any
// other input deactivates the palette.
func (m *Matcher) SetQuery(raw string) {
	m.query = raw
	m.recompute()
}

// Reset discards the navigation state. Called when the palette closes; the
// next open starts fresh.
func (m *Matcher) Reset() {
	m.query = ""
	m.filtered = nil
	m.selected = 0
}

// Query returns the raw input text last passed to SetQuery.
func (m *Matcher) Query() string {
	return m.query
}

// Filtered returns the current ranked, filtered command list.
func (m *Matcher) Filtered() []Command {
	return m.filtered
}

// Selected returns the index of the selection cursor. Only meaningful when
// Active reports true.
func (m *Matcher) Selected() int {
	return m.selected
}

// SelectedCommand returns the command under the cursor, or false when the
// filtered list is empty.
func (m *Matcher) SelectedCommand() (Command, bool) {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return Command{}, false
	}
	return m.filtered[m.selected], true
}

// Active reports whether the palette has anything to navigate. Every key
// press is ignored while inactive so the host keeps its default behavior.
func (m *Matcher) Active() bool {
	return len(m.filtered) > 0
}

// TriggerActive reports whether the query begins with the trigger
// character. Distinct from Active: a query with no matches keeps the
// popup open so the host can show loading, error, and no-match states,
// while the keyboard contract stays keyed off Active.
func (m *Matcher) TriggerActive() bool {
	return len(m.query) > 0 && rune(m.query[0]) == Trigger
}

// =============================================================================
// FILTERING AND RANKING
// =============================================================================

// recompute rebuilds filtered from the working set and the query, and
// resets the cursor. Runs on every keystroke; the working sets involved
// are small enough that no incremental update is warranted.
func (m *Matcher) recompute() {
	m.selected = 0

	if len(m.query) == 0 || rune(m.query[0]) != Trigger {
		m.filtered = nil
		return
	}

	query := strings.ToLower(strings.TrimRight(m.query[1:], " \t"))

	if query == "" {
		// Full list, unranked, in fetch order.
		m.filtered = append([]Command(nil), m.commands...)
		return
	}

	var kept []Command
	for _, c := range m.commands {
		name := strings.ToLower(c.Name)
		desc := strings.ToLower(c.Description)
		if strings.Contains(name, query) || strings.Contains(desc, query) {
			kept = append(kept, c)
		}
	}

	m.rank(kept, query)
	m.filtered = kept
}

// rank sorts kept commands with a three-tier comparator: exact name match,
// then name-prefix match, then locale-aware lexicographic order of names.
// The result is a deterministic total order for any input with unique
// names.
func (m *Matcher) rank(cmds []Command, query string) {
	sort.SliceStable(cmds, func(i, j int) bool {
		ni := strings.ToLower(cmds[i].Name)
		nj := strings.ToLower(cmds[j].Name)

		exactI, exactJ := ni == query, nj == query
		if exactI != exactJ {
			return exactI
		}

		prefI, prefJ := strings.HasPrefix(ni, query), strings.HasPrefix(nj, query)
		if prefI != prefJ {
			return prefI
		}

		return m.collator.CompareString(ni, nj) < 0
	})
}

// =============================================================================
// KEYBOARD CONTRACT
// =============================================================================

// HandleKey applies a key press to the navigation state and reports
// whether it was consumed.
//
// Down and up clamp the cursor to [0, len(filtered)-1]. Enter and tab
// invoke the selection callback with the command under the cursor. Escape
// invokes the close callback. While the filtered list is empty every key,
// including enter and escape, is reported ignored and neither callback
// fires.
//
// Selecting a command does not clear the query or close the palette; that
// is the host's job once the callback returns.
func (m *Matcher) HandleKey(kp KeyPress) KeyResult {
	if !m.Active() {
		return KeyIgnored
	}

	switch kp.Key {
	case KeyDown:
		if m.selected < len(m.filtered)-1 {
			m.selected++
		}
		return KeyHandled

	case KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return KeyHandled

	case KeyEnter, KeyTab:
		cmd, ok := m.SelectedCommand()
		if !ok {
			return KeyIgnored
		}
		if m.onSelect != nil {
			m.onSelect(cmd)
		}
		return KeyHandled

	case KeyEscape:
		if m.onClose != nil {
			m.onClose()
		}
		return KeyHandled

	default:
		return KeyIgnored
	}
}

// Click invokes the selection callback for the command at index i, as a
// mouse click on a palette row would. Out-of-range indexes are ignored.
func (m *Matcher) Click(i int) {
	if i < 0 || i >= len(m.filtered) {
		return
	}
	if m.onSelect != nil {
		m.onSelect(m.filtered[i])
	}
}
