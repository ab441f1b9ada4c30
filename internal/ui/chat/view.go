// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// requestTimeout bounds command-initiated API calls.
const requestTimeout = 15 * time.Second

// apiContext returns a bounded context for a one-shot API call.
func apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize propagates the terminal size to every component.
func (m *Model) resize(w, h int) {
	m.width = w
	m.height = h

	m.input.Width = w - 4
	m.palette.SetWidth(w - 4)
	m.statusBar.SetWidth(w)
	m.updateBanner.SetWidth(w)
	m.todoList.SetWidth(w - 4)

	if m.question != nil {
		m.question.SetWidth(w - 8)
	}
	if m.totpSetup != nil {
		m.totpSetup.SetWidth(w - 8)
	}
	if m.agentForm != nil {
		m.agentForm.SetWidth(w - 8)
	}

	m.vp.Width = w
	m.vp.Height = m.transcriptHeight()
	m.syncViewport()
}

// transcriptHeight is the viewport height after the fixed chrome: input
// line, status bar, and the banner when visible.
func (m *Model) transcriptHeight() int {
	h := m.height - 3
	if m.banner.Visible() {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// syncViewport re-renders the transcript into the viewport.
func (m *Model) syncViewport() {
	var parts []string
	for _, msg := range m.messages {
		parts = append(parts, m.renderMessage(msg))
	}
	m.vp.SetContent(strings.Join(parts, "\n"))
}

// renderMessage renders one transcript entry. Assistant messages are
// markdown; user and system entries are plain styled text.
func (m *Model) renderMessage(msg message) string {
	switch msg.role {
	case roleUser:
		return m.theme.UserBubble.Render("you: " + msg.body)
	case roleSystem:
		return m.theme.SystemNote.Render(msg.body)
	default:
		return m.theme.AssistantBubble.Render(m.renderMarkdown(msg.body))
	}
}

// renderMarkdown renders assistant markdown at the configured width,
// falling back to the raw text when rendering fails.
func (m *Model) renderMarkdown(body string) string {
	width := m.cfg.UI.MarkdownWidth
	if width > m.width-4 && m.width > 4 {
		width = m.width - 4
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen.
func (m *Model) View() string {
	if m.overlay != overlayNone {
		return m.viewOverlay()
	}

	var b strings.Builder

	if m.banner.Visible() {
		b.WriteString(m.updateBanner.View())
		b.WriteString("\n")
	}

	b.WriteString(m.vp.View())
	b.WriteString("\n")

	if m.todos.Len() > 0 {
		b.WriteString(m.todoList.View(m.todos))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")

	if m.palette.Visible() {
		b.WriteString(m.palette.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar.View(m.monitor.State(), m.todos.Summarize()))

	return b.String()
}

// viewOverlay renders the active modal centered over a blank backdrop.
func (m *Model) viewOverlay() string {
	var body string
	switch m.overlay {
	case overlayQuestion:
		if m.question != nil {
			body = m.question.View()
		}
	case overlayTotp:
		if m.totpSetup != nil {
			body = m.totpSetup.View()
		}
	case overlayAgentForm:
		if m.agentForm != nil {
			body = m.agentForm.View()
		}
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}
