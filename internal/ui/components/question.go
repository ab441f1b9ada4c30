// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/ui/styles"
)

// =============================================================================
// QUESTION CARD
// =============================================================================

// Question is a card the assistant uses to ask the user something with a
// fixed set of options. Single-select answers on enter; multi-select
// toggles with space and answers on enter. An optional "Other" row opens
// a free-text input.
type Question struct {
	theme *styles.Theme

	prompt  string
	options []string
	multi   bool
	other   bool

	cursor  int
	chosen  map[int]bool
	editing bool
	input   textinput.Model

	width    int
	rendered string
}

// NewQuestion creates a question card. The prompt is markdown.
func NewQuestion(theme *styles.Theme, prompt string, options []string, multi, allowOther bool) *Question {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Prompt = "> "
	ti.CharLimit = 400

	return &Question{
		theme:   theme,
		prompt:  prompt,
		options: options,
		multi:   multi,
		other:   allowOther,
		chosen:  make(map[int]bool),
		input:   ti,
		width:   60,
	}
}

// SetWidth sets the render width and invalidates the markdown cache.
func (q *Question) SetWidth(w int) {
	if w < 30 {
		w = 30
	}
	if w != q.width {
		q.width = w
		q.rendered = ""
	}
}

// rowCount is the number of selectable rows, including the Other row.
func (q *Question) rowCount() int {
	n := len(q.options)
	if q.other {
		n++
	}
	return n
}

// otherRow is the index of the Other row, or -1 when disabled.
func (q *Question) otherRow() int {
	if !q.other {
		return -1
	}
	return len(q.options)
}

// AnsweredMsg carries the user's answer out of the question card.
type AnsweredMsg struct {
	// Answers holds the selected option texts, or the free-text answer
	// when Other was used.
	Answers []string
}

// Update handles a key press. It returns a command carrying AnsweredMsg
// once the user commits an answer.
func (q *Question) Update(msg tea.KeyMsg) tea.Cmd {
	if q.editing {
		return q.updateEditing(msg)
	}

	switch msg.String() {
	case "up", "k":
		if q.cursor > 0 {
			q.cursor--
		}
	case "down", "j":
		if q.cursor < q.rowCount()-1 {
			q.cursor++
		}
	case " ":
		if q.multi && q.cursor != q.otherRow() {
			q.chosen[q.cursor] = !q.chosen[q.cursor]
		}
	case "enter":
		if q.cursor == q.otherRow() {
			q.editing = true
			q.input.Focus()
			return textinput.Blink
		}
		return q.commit()
	}
	return nil
}

// updateEditing handles keys while the Other input is open.
func (q *Question) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		q.editing = false
		q.input.Blur()
		return nil
	case "enter":
		text := strings.TrimSpace(q.input.Value())
		if text == "" {
			return nil
		}
		return answered([]string{text})
	}

	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	return cmd
}

// commit produces the answer for the current selection state.
func (q *Question) commit() tea.Cmd {
	if !q.multi {
		if q.cursor >= len(q.options) {
			return nil
		}
		return answered([]string{q.options[q.cursor]})
	}

	var answers []string
	for i, opt := range q.options {
		if q.chosen[i] {
			answers = append(answers, opt)
		}
	}
	if len(answers) == 0 {
		// Multi-select with nothing ticked answers the highlighted row.
		if q.cursor < len(q.options) {
			answers = []string{q.options[q.cursor]}
		} else {
			return nil
		}
	}
	return answered(answers)
}

func answered(answers []string) tea.Cmd {
	return func() tea.Msg {
		return AnsweredMsg{Answers: answers}
	}
}

// View renders the card.
func (q *Question) View() string {
	parts := []string{q.renderPrompt()}

	for i, opt := range q.options {
		parts = append(parts, q.renderOption(i, opt))
	}
	if q.other {
		parts = append(parts, q.renderOtherRow())
	}

	var hint string
	switch {
	case q.editing:
		hint = "enter submit | esc back"
	case q.multi:
		hint = "space toggle | enter answer"
	default:
		hint = "up/down move | enter answer"
	}
	parts = append(parts, q.theme.PaletteHint.Render(hint))

	return q.theme.ModalBox.Width(q.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderPrompt renders the markdown prompt, cached per width. Falls back
// to the raw text if rendering fails.
func (q *Question) renderPrompt() string {
	if q.rendered != "" {
		return q.rendered
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(q.width-6),
	)
	if err == nil {
		if out, rerr := r.Render(q.prompt); rerr == nil {
			q.rendered = strings.TrimRight(out, "\n")
			return q.rendered
		}
	}
	q.rendered = q.theme.ModalBody.Width(q.width - 6).Render(q.prompt)
	return q.rendered
}

// renderOption renders one option row.
func (q *Question) renderOption(i int, opt string) string {
	mark := ""
	if q.multi {
		mark = "[ ] "
		if q.chosen[i] {
			mark = q.theme.OptionMark.Render("[x]") + " "
		}
	}

	line := mark + opt
	if i == q.cursor && !q.editing {
		return q.theme.OptionSelected.Width(q.width - 6).Render("> " + line)
	}
	return q.theme.OptionItem.Render("  " + line)
}

// renderOtherRow renders the free-text row, expanded while editing.
func (q *Question) renderOtherRow() string {
	if q.editing {
		q.input.Width = q.width - 10
		return q.theme.OptionItem.Render("  Other: ") + q.input.View()
	}
	label := "  Other..."
	if q.cursor == q.otherRow() {
		return q.theme.OptionSelected.Width(q.width - 6).Render("> Other...")
	}
	return q.theme.OptionItem.Render(label)
}
