// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parley-chat/parley-tui/internal/ui/styles"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// answerFrom runs the command and extracts the answer, if any.
func answerFrom(t *testing.T, cmd tea.Cmd) ([]string, bool) {
	t.Helper()
	if cmd == nil {
		return nil, false
	}
	msg, ok := cmd().(AnsweredMsg)
	if !ok {
		return nil, false
	}
	return msg.Answers, true
}

func TestQuestionSingleSelect(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick one", []string{"alpha", "beta", "gamma"}, false, false)

	q.Update(key("down"))
	answers, ok := answerFrom(t, q.Update(key("enter")))
	if !ok {
		t.Fatal("expected an answer")
	}
	if len(answers) != 1 || answers[0] != "beta" {
		t.Fatalf("got %v, want [beta]", answers)
	}
}

func TestQuestionCursorClamps(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick", []string{"a", "b"}, false, false)

	q.Update(key("up")) // already at top
	answers, _ := answerFrom(t, q.Update(key("enter")))
	if answers[0] != "a" {
		t.Fatalf("cursor moved above first option: %v", answers)
	}

	q2 := NewQuestion(styles.NewTheme("dark"), "Pick", []string{"a", "b"}, false, false)
	for i := 0; i < 5; i++ {
		q2.Update(key("down"))
	}
	answers, _ = answerFrom(t, q2.Update(key("enter")))
	if answers[0] != "b" {
		t.Fatalf("cursor moved past last option: %v", answers)
	}
}

func TestQuestionMultiSelect(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick many", []string{"a", "b", "c"}, true, false)

	q.Update(key(" ")) // tick a
	q.Update(key("down"))
	q.Update(key("down"))
	q.Update(key(" ")) // tick c

	answers, ok := answerFrom(t, q.Update(key("enter")))
	if !ok {
		t.Fatal("expected an answer")
	}
	if len(answers) != 2 || answers[0] != "a" || answers[1] != "c" {
		t.Fatalf("got %v, want [a c]", answers)
	}
}

func TestQuestionMultiSelectNothingTickedAnswersHighlighted(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick many", []string{"a", "b"}, true, false)

	q.Update(key("down"))
	answers, ok := answerFrom(t, q.Update(key("enter")))
	if !ok || len(answers) != 1 || answers[0] != "b" {
		t.Fatalf("got %v, want [b]", answers)
	}
}

func TestQuestionOtherFreeText(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick", []string{"a"}, false, true)

	q.Update(key("down"))  // move to Other
	q.Update(key("enter")) // open input
	q.Update(key("custom answer"))

	answers, ok := answerFrom(t, q.Update(key("enter")))
	if !ok {
		t.Fatal("expected an answer")
	}
	if answers[0] != "custom answer" {
		t.Fatalf("got %v, want [custom answer]", answers)
	}
}

func TestQuestionOtherEmptyRejected(t *testing.T) {
	q := NewQuestion(styles.NewTheme("dark"), "Pick", []string{"a"}, false, true)

	q.Update(key("down"))
	q.Update(key("enter"))
	if _, ok := answerFrom(t, q.Update(key("enter"))); ok {
		t.Fatal("empty free-text answer should be rejected")
	}

	// Esc returns to the option list.
	q.Update(key("esc"))
	q.Update(key("up"))
	answers, ok := answerFrom(t, q.Update(key("enter")))
	if !ok || answers[0] != "a" {
		t.Fatalf("got %v, want [a]", answers)
	}
}
