// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/connection"
	"github.com/parley-chat/parley-tui/internal/todo"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
	"github.com/parley-chat/parley-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom line: connection badge, task progress, and
// key hints.
type StatusBar struct {
	theme *styles.Theme
	width int
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme, width: 80}
}

// SetWidth sets the rendered width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// View renders the bar for the given connection state and task progress.
func (s *StatusBar) View(conn connection.State, progress todo.Progress) string {
	badge := s.renderBadge(conn)

	var middle string
	if progress.Total > 0 {
		middle = s.theme.TodoProgress.Render(progress.String())
	}

	hints := s.theme.ShortcutKey.Render("/") + s.theme.ShortcutDesc.Render(" commands  ") +
		s.theme.ShortcutKey.Render("ctrl+c") + s.theme.ShortcutDesc.Render(" quit")

	left := badge
	if middle != "" {
		left += "  " + middle
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + hints)
}

// renderBadge renders the connection badge with latency when connected.
func (s *StatusBar) renderBadge(conn connection.State) string {
	switch conn.Status {
	case connection.StatusConnected:
		label := styles.StatusIndicators.Active + " connected"
		if conn.Latency > 0 {
			label += " " + util.FormatLatency(conn.Latency)
		}
		return s.theme.BadgeConnected.Render(label)
	case connection.StatusDegraded:
		return s.theme.BadgeDegraded.Render(styles.StatusIndicators.Warning + " degraded")
	case connection.StatusOffline:
		return s.theme.BadgeOffline.Render(styles.StatusIndicators.Error + " offline")
	default:
		return s.theme.BadgeConnecting.Render(styles.StatusIndicators.Pending + " connecting")
	}
}
