// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// CHAT STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemNote      lipgloss.Style

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// COMMAND PALETTE STYLES
	// ==========================================================================

	PaletteBox          lipgloss.Style
	PaletteItem         lipgloss.Style
	PaletteItemSelected lipgloss.Style
	PaletteCommand      lipgloss.Style
	PaletteDesc         lipgloss.Style
	PaletteHint         lipgloss.Style
	PaletteEmpty        lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar       lipgloss.Style
	BadgeConnected  lipgloss.Style
	BadgeConnecting lipgloss.Style
	BadgeDegraded   lipgloss.Style
	BadgeOffline    lipgloss.Style
	ShortcutKey     lipgloss.Style
	ShortcutDesc    lipgloss.Style

	// ==========================================================================
	// MODAL AND FORM STYLES
	// ==========================================================================

	ModalBox         lipgloss.Style
	ModalTitle       lipgloss.Style
	ModalBody        lipgloss.Style
	Button           lipgloss.Style
	ButtonActive     lipgloss.Style
	FieldLabel       lipgloss.Style
	FieldLabelFocus  lipgloss.Style
	FieldError       lipgloss.Style
	OptionItem       lipgloss.Style
	OptionSelected   lipgloss.Style
	OptionMark       lipgloss.Style
	SecretBox        lipgloss.Style
	RecoveryCode     lipgloss.Style

	// ==========================================================================
	// BANNER AND LIST STYLES
	// ==========================================================================

	UpdateBanner   lipgloss.Style
	TodoPending    lipgloss.Style
	TodoActive     lipgloss.Style
	TodoDone       lipgloss.Style
	TodoProgress   lipgloss.Style
	SuccessStyle   lipgloss.Style
	ErrorStyle     lipgloss.Style
	WarningStyle   lipgloss.Style
}

// NewTheme creates a theme, forcing dark or light when mode is "dark" or
// "light" and detecting the terminal background for "auto".
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Chat
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 2).
		MarginRight(4)

	t.SystemNote = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Align(lipgloss.Center)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Command palette
	t.PaletteBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.PaletteItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.PaletteItemSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Padding(0, 1)

	t.PaletteCommand = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.PaletteDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PaletteHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.PaletteEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.BadgeConnected = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.BadgeConnecting = lipgloss.NewStyle().Foreground(TextMuted)
	t.BadgeDegraded = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.BadgeOffline = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Modals and forms
	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.ModalTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.ModalBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.ButtonActive = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 2)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FieldLabelFocus = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	t.OptionItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.OptionSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Padding(0, 1)

	t.OptionMark = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.SecretBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Cyan).
		Padding(0, 2).
		Bold(true)

	t.RecoveryCode = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Banners and lists
	t.UpdateBanner = lipgloss.NewStyle().
		Foreground(Amber).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.TodoPending = lipgloss.NewStyle().Foreground(TextSecondary)
	t.TodoActive = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.TodoDone = lipgloss.NewStyle().Foreground(TextMuted).Strikethrough(true)
	t.TodoProgress = lipgloss.NewStyle().Foreground(TextMuted)

	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
}
