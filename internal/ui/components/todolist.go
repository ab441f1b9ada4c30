// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/parley-chat/parley-tui/internal/todo"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
	"github.com/parley-chat/parley-tui/internal/util"
)

// =============================================================================
// TODO LIST
// =============================================================================

// TodoList renders the agent's task list as a compact checklist.
type TodoList struct {
	theme *styles.Theme
	width int
}

// NewTodoList creates a todo list renderer.
func NewTodoList(theme *styles.Theme) *TodoList {
	return &TodoList{theme: theme, width: 60}
}

// SetWidth sets the rendered width.
func (t *TodoList) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	t.width = w
}

// View renders the checklist with a progress summary line. Empty lists
// render nothing.
func (t *TodoList) View(list *todo.List) string {
	if list.Len() == 0 {
		return ""
	}

	lines := make([]string, 0, list.Len()+1)
	for _, item := range list.Items() {
		lines = append(lines, t.renderItem(item))
	}
	lines = append(lines, t.theme.TodoProgress.Render(list.Summarize().String()))
	return strings.Join(lines, "\n")
}

// renderItem renders one checklist row.
func (t *TodoList) renderItem(item todo.Item) string {
	label := util.TruncateWidth(item.Label(), t.width-5)
	switch item.Status {
	case todo.StatusCompleted:
		return t.theme.TodoDone.Render(styles.StatusIndicators.Success + " " + label)
	case todo.StatusInProgress:
		return t.theme.TodoActive.Render(styles.StatusIndicators.Active + " " + label)
	default:
		return t.theme.TodoPending.Render(styles.StatusIndicators.Pending + " " + label)
	}
}
