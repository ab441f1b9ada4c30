// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/parley-chat/parley-tui/internal/ui/styles"
	"github.com/parley-chat/parley-tui/internal/update"
)

// =============================================================================
// UPDATE BANNER
// =============================================================================

// UpdateBanner renders the one-line notice shown above the chat when a
// newer release is available.
type UpdateBanner struct {
	theme  *styles.Theme
	banner *update.Banner
	width  int
}

// NewUpdateBanner wraps the update banner state for rendering.
func NewUpdateBanner(theme *styles.Theme, banner *update.Banner) *UpdateBanner {
	return &UpdateBanner{theme: theme, banner: banner, width: 80}
}

// SetWidth sets the rendered width.
func (b *UpdateBanner) SetWidth(w int) {
	b.width = w
}

// Visible reports whether the banner should render.
func (b *UpdateBanner) Visible() bool {
	return b.banner.Visible()
}

// View renders the banner line. Empty when hidden.
func (b *UpdateBanner) View() string {
	if !b.banner.Visible() {
		return ""
	}
	rel := b.banner.Release()
	text := fmt.Sprintf("%s parley %s is available: %s  (x to dismiss)",
		styles.StatusIndicators.Info, rel.Version, rel.URL)
	return b.theme.UpdateBanner.Width(b.width).Render(text)
}
