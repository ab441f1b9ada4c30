// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package todo

import (
	"testing"
)

func TestReplaceIsWholesale(t *testing.T) {
	l := NewList()
	l.Replace([]Item{
		{Content: "a", Status: StatusPending},
		{Content: "b", Status: StatusCompleted},
	})
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}

	l.Replace([]Item{{Content: "c", Status: StatusPending}})
	if l.Len() != 1 || l.Items()[0].Content != "c" {
		t.Errorf("Replace did not swap wholesale: %+v", l.Items())
	}

	// The list must not alias the caller's slice.
	src := []Item{{Content: "d", Status: StatusPending}}
	l.Replace(src)
	src[0].Content = "mutated"
	if l.Items()[0].Content != "d" {
		t.Error("Replace aliased the caller's slice")
	}
}

func TestActiveItem(t *testing.T) {
	l := NewList()
	if _, ok := l.Active(); ok {
		t.Error("empty list reported an active item")
	}

	l.Replace([]Item{
		{Content: "Write tests", Status: StatusCompleted},
		{Content: "Fix the bug", ActiveForm: "Fixing the bug", Status: StatusInProgress},
		{Content: "Ship it", Status: StatusPending},
	})
	active, ok := l.Active()
	if !ok {
		t.Fatal("no active item found")
	}
	if active.Label() != "Fixing the bug" {
		t.Errorf("active label = %q, want the active form", active.Label())
	}
}

func TestLabelFallsBackToContent(t *testing.T) {
	it := Item{Content: "Do it", Status: StatusInProgress}
	if it.Label() != "Do it" {
		t.Errorf("Label = %q, want content fallback", it.Label())
	}
	it = Item{Content: "Do it", ActiveForm: "Doing it", Status: StatusPending}
	if it.Label() != "Do it" {
		t.Errorf("pending item used active form: %q", it.Label())
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		items     []Item
		want      Progress
		wantFrac  float64
		wantLabel string
	}{
		{
			name:      "empty list is complete",
			items:     nil,
			want:      Progress{},
			wantFrac:  1.0,
			wantLabel: "0/0 done",
		},
		{
			name: "mixed statuses",
			items: []Item{
				{Status: StatusCompleted},
				{Status: StatusCompleted},
				{Status: StatusInProgress},
				{Status: StatusPending},
			},
			want:      Progress{Total: 4, Completed: 2, Running: 1},
			wantFrac:  0.5,
			wantLabel: "2/4 done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList()
			l.Replace(tt.items)
			got := l.Summarize()
			if got != tt.want {
				t.Errorf("Summarize = %+v, want %+v", got, tt.want)
			}
			if got.Fraction() != tt.wantFrac {
				t.Errorf("Fraction = %v, want %v", got.Fraction(), tt.wantFrac)
			}
			if got.String() != tt.wantLabel {
				t.Errorf("String = %q, want %q", got.String(), tt.wantLabel)
			}
		})
	}
}
