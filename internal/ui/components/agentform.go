// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/agents"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
)

// =============================================================================
// AGENT FORM
// =============================================================================

// formFields is the tab order of the form, matching the editor's fields.
var formFields = []agents.Field{
	agents.FieldName,
	agents.FieldDescription,
	agents.FieldModel,
	agents.FieldPrompt,
	agents.FieldTools,
}

// AgentForm renders the create/edit agent dialog over an agents.Editor.
// The editor owns values, focus, and validation; the form owns the text
// inputs and key routing.
type AgentForm struct {
	theme  *styles.Theme
	editor *agents.Editor
	inputs map[agents.Field]textinput.Model
	width  int
}

// SavedMsg reports that the form was submitted with a valid agent.
type SavedMsg struct {
	Agent agents.Agent
}

// CancelledMsg reports that the form was dismissed.
type CancelledMsg struct{}

// NewAgentForm builds the form for an editor.
func NewAgentForm(theme *styles.Theme, editor *agents.Editor) *AgentForm {
	inputs := make(map[agents.Field]textinput.Model, len(formFields))
	for _, f := range formFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 500
		ti.SetValue(editor.Value(f))
		inputs[f] = ti
	}

	form := &AgentForm{theme: theme, editor: editor, inputs: inputs, width: 64}
	form.syncFocus()
	return form
}

// SetWidth sets the rendered width.
func (f *AgentForm) SetWidth(w int) {
	if w < 40 {
		w = 40
	}
	f.width = w
}

// Update routes a key press. Tab/shift+tab move between fields, enter
// submits, esc cancels.
func (f *AgentForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return func() tea.Msg { return CancelledMsg{} }

	case "tab", "down":
		f.commitFocused()
		f.editor.NextField()
		f.syncFocus()
		return nil

	case "shift+tab", "up":
		f.commitFocused()
		f.editor.PrevField()
		f.syncFocus()
		return nil

	case "enter":
		f.commitFocused()
		agent, ok := f.editor.Build()
		if !ok {
			return nil
		}
		return func() tea.Msg { return SavedMsg{Agent: agent} }
	}

	focused := f.editor.Focus()
	in := f.inputs[focused]
	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	f.inputs[focused] = in
	f.editor.SetValue(focused, in.Value())
	return cmd
}

// commitFocused pushes the focused input's text into the editor.
func (f *AgentForm) commitFocused() {
	focused := f.editor.Focus()
	f.editor.SetValue(focused, f.inputs[focused].Value())
}

// syncFocus focuses the input matching the editor's focused field.
func (f *AgentForm) syncFocus() {
	for field, in := range f.inputs {
		if field == f.editor.Focus() {
			in.Focus()
		} else {
			in.Blur()
		}
		f.inputs[field] = in
	}
}

// View renders the form.
func (f *AgentForm) View() string {
	title := "Edit agent"
	if f.editor.IsNew() {
		title = "New agent"
	}

	parts := []string{f.theme.ModalTitle.Render(title)}
	for _, field := range formFields {
		parts = append(parts, f.renderField(field))
	}
	parts = append(parts, f.theme.PaletteHint.Render("tab next field | enter save | esc cancel"))

	return f.theme.ModalBox.Width(f.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderField renders a label, its input, and any validation problem.
func (f *AgentForm) renderField(field agents.Field) string {
	labelStyle := f.theme.FieldLabel
	if field == f.editor.Focus() {
		labelStyle = f.theme.FieldLabelFocus
	}

	in := f.inputs[field]
	in.Width = f.width - 10
	line := labelStyle.Render(field.String()+":") + " " + in.View()

	if err := f.editor.Problem(field); err != nil {
		line += "\n" + f.theme.FieldError.Render("  "+err.Error())
	}
	return line
}
