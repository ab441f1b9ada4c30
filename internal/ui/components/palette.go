// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the parley TUI.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/commands"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
	"github.com/parley-chat/parley-tui/internal/util"
)

// =============================================================================
// COMMAND PALETTE
// =============================================================================

// maxVisibleItems caps how many rows the palette shows at once; longer
// result sets scroll.
const maxVisibleItems = 8

// Palette renders the slash-command popup above the input line. Filtering
// and selection live in the matcher; the palette only presents them and
// keeps the selected row scrolled into view.
type Palette struct {
	matcher *commands.Matcher
	theme   *styles.Theme

	width  int
	offset int

	loading bool
	loadErr error
}

// NewPalette creates a palette over an existing matcher.
func NewPalette(m *commands.Matcher, theme *styles.Theme) *Palette {
	return &Palette{matcher: m, theme: theme, width: 60}
}

// SetWidth sets the rendered width.
func (p *Palette) SetWidth(w int) {
	if w < 30 {
		w = 30
	}
	p.width = w
}

// SetLoading toggles the fetching indicator shown while the command list
// is in flight.
func (p *Palette) SetLoading(loading bool) {
	p.loading = loading
}

// SetError records a fetch failure to surface in the popup.
func (p *Palette) SetError(err error) {
	p.loadErr = err
}

// Visible reports whether the popup should render. The popup stays open
// while the query carries the trigger even when nothing matches, so the
// loading, error, and no-match states can show.
func (p *Palette) Visible() bool {
	return p.matcher.TriggerActive()
}

// scrollIntoView clamps the window offset so the selected row is visible.
func (p *Palette) scrollIntoView() {
	selected := p.matcher.Selected()
	if selected < p.offset {
		p.offset = selected
	}
	if selected >= p.offset+maxVisibleItems {
		p.offset = selected - maxVisibleItems + 1
	}
	if max := len(p.matcher.Filtered()) - maxVisibleItems; p.offset > max {
		p.offset = max
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// View renders the popup. Empty string when inactive.
func (p *Palette) View() string {
	if !p.Visible() {
		return ""
	}

	innerWidth := p.width - 4

	var rows []string
	switch {
	case p.loadErr != nil:
		rows = append(rows, p.theme.PaletteEmpty.Render("Could not load commands"))
	case p.loading && len(p.matcher.Filtered()) == 0:
		rows = append(rows, p.theme.PaletteEmpty.Render("Loading commands..."))
	case len(p.matcher.Filtered()) == 0:
		rows = append(rows, p.theme.PaletteEmpty.Render("No matching commands"))
	default:
		rows = p.renderRows(innerWidth)
	}

	hint := p.theme.PaletteHint.Render("up/down move | enter run | esc close")
	content := lipgloss.JoinVertical(lipgloss.Left, append(rows, hint)...)

	return p.theme.PaletteBox.Width(p.width).Render(content)
}

// renderRows renders the visible window of matches.
func (p *Palette) renderRows(width int) []string {
	p.scrollIntoView()

	filtered := p.matcher.Filtered()
	end := p.offset + maxVisibleItems
	if end > len(filtered) {
		end = len(filtered)
	}

	rows := make([]string, 0, end-p.offset+2)
	if p.offset > 0 {
		rows = append(rows, p.theme.PaletteHint.Render(fmt.Sprintf("  ... %d above", p.offset)))
	}

	for i := p.offset; i < end; i++ {
		rows = append(rows, p.renderRow(filtered[i], i == p.matcher.Selected(), width))
	}

	if rest := len(filtered) - end; rest > 0 {
		rows = append(rows, p.theme.PaletteHint.Render(fmt.Sprintf("  ... %d more", rest)))
	}
	return rows
}

// renderRow renders one command row.
func (p *Palette) renderRow(cmd commands.Command, selected bool, width int) string {
	name := "/" + cmd.Name
	if cmd.ArgumentHint != "" {
		name += " " + cmd.ArgumentHint
	}

	descWidth := width - lipgloss.Width(name) - 4
	if descWidth < 8 {
		descWidth = 8
	}
	desc := util.TruncateWidth(cmd.Description, descWidth)

	if selected {
		line := "> " + name + "  " + desc
		return p.theme.PaletteItemSelected.Width(width).Render(util.TruncateWidth(line, width-2))
	}

	line := "  " + p.theme.PaletteCommand.Render(name) + "  " + p.theme.PaletteDesc.Render(desc)
	return p.theme.PaletteItem.Render(line)
}

// RowAt translates a rendered row index (relative to the first visible
// command row) into a filtered-list index for mouse clicks.
func (p *Palette) RowAt(visibleRow int) (int, bool) {
	idx := p.offset + visibleRow
	if idx < 0 || idx >= len(p.matcher.Filtered()) {
		return 0, false
	}
	return idx, true
}

// Reset clears the scroll window, for when the popup closes.
func (p *Palette) Reset() {
	p.offset = 0
	p.loading = false
	p.loadErr = nil
}
