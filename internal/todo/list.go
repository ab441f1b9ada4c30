// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package todo models the agent's todo/progress list.
//
// The agent reports its plan as a flat list of items. The client treats
// the list as immutable: every update replaces it wholesale, never mutates
// it in place.
package todo

import (
	"fmt"
)

// =============================================================================
// TODO ITEMS
// =============================================================================

// Status is the lifecycle state of a todo item.
type Status string

const (
	// StatusPending indicates the item has not been started.
	StatusPending Status = "pending"

	// StatusInProgress indicates the agent is working on the item.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the item is done.
	StatusCompleted Status = "completed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Item is a single entry in the agent's todo list.
type Item struct {
	// Content is the imperative form shown for pending items
	// (e.g. "Run the test suite").
	Content string `json:"content"`

	// ActiveForm is the progressive form shown while in progress
	// (e.g. "Running the test suite").
	ActiveForm string `json:"active_form,omitempty"`

	// Status is the item's lifecycle state.
	Status Status `json:"status"`
}

// Label returns the text to display for the item given its status.
func (i Item) Label() string {
	if i.Status == StatusInProgress && i.ActiveForm != "" {
		return i.ActiveForm
	}
	return i.Content
}

// =============================================================================
// LIST STATE
// =============================================================================

// List holds the current todo list. A List is owned by the UI goroutine;
// it is not safe for concurrent use.
type List struct {
	items []Item
}

// NewList creates an empty todo list.
func NewList() *List {
	return &List{}
}

// Replace swaps in a new set of items wholesale.
func (l *List) Replace(items []Item) {
	l.items = append([]Item(nil), items...)
}

// Items returns the current items in order.
func (l *List) Items() []Item {
	return l.items
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// Active returns the first in-progress item, or false when nothing is
// running.
func (l *List) Active() (Item, bool) {
	for _, it := range l.items {
		if it.Status == StatusInProgress {
			return it, true
		}
	}
	return Item{}, false
}

// =============================================================================
// PROGRESS SUMMARY
// =============================================================================

// Progress summarizes completion of a todo list. Derived by a pure
// function; recompute after every Replace.
type Progress struct {
	Total     int
	Completed int
	Running   int
}

// Summarize computes the progress summary for the current items.
func (l *List) Summarize() Progress {
	p := Progress{Total: len(l.items)}
	for _, it := range l.items {
		switch it.Status {
		case StatusCompleted:
			p.Completed++
		case StatusInProgress:
			p.Running++
		}
	}
	return p
}

// Fraction returns completion as a value in [0, 1]. An empty list counts
// as fully complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1.0
	}
	return float64(p.Completed) / float64(p.Total)
}

// String renders the summary as "3/7 done".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d done", p.Completed, p.Total)
}
