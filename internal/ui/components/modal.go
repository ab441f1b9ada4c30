// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/ui/styles"
)

// =============================================================================
// MODAL SHELL
// =============================================================================

// Modal is the shared shell for centered dialogs: a title, a body, and a
// row of buttons with focus cycling. The content and the decision logic
// belong to the caller; the modal only renders and tracks button focus.
type Modal struct {
	theme *styles.Theme

	title   string
	body    string
	buttons []string
	focus   int

	width  int
	height int
}

// NewModal creates a modal with the given buttons. The first button has
// initial focus.
func NewModal(theme *styles.Theme, title string, buttons ...string) *Modal {
	return &Modal{theme: theme, title: title, buttons: buttons}
}

// SetBody replaces the body text.
func (m *Modal) SetBody(body string) {
	m.body = body
}

// SetSize sets the terminal dimensions used for centering.
func (m *Modal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focus returns the focused button index.
func (m *Modal) Focus() int {
	return m.focus
}

// FocusedButton returns the focused button label.
func (m *Modal) FocusedButton() string {
	if m.focus < 0 || m.focus >= len(m.buttons) {
		return ""
	}
	return m.buttons[m.focus]
}

// Next moves button focus forward, wrapping.
func (m *Modal) Next() {
	if len(m.buttons) == 0 {
		return
	}
	m.focus = (m.focus + 1) % len(m.buttons)
}

// Prev moves button focus backward, wrapping.
func (m *Modal) Prev() {
	if len(m.buttons) == 0 {
		return
	}
	m.focus = (m.focus - 1 + len(m.buttons)) % len(m.buttons)
}

// View renders the modal centered in the terminal.
func (m *Modal) View() string {
	boxWidth := 56
	if m.width > 0 && m.width < boxWidth+8 {
		boxWidth = m.width - 8
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	parts := []string{m.theme.ModalTitle.Render(m.title)}
	if m.body != "" {
		parts = append(parts, m.theme.ModalBody.Width(boxWidth-6).Render(m.body))
	}
	if len(m.buttons) > 0 {
		parts = append(parts, m.renderButtons())
	}

	box := m.theme.ModalBox.Width(boxWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// renderButtons renders the button row with the focused one highlighted.
func (m *Modal) renderButtons() string {
	rendered := make([]string, len(m.buttons))
	for i, label := range m.buttons {
		if i == m.focus {
			rendered[i] = m.theme.ButtonActive.Render(label)
		} else {
			rendered[i] = m.theme.Button.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
