// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parley-chat/parley-tui/internal/api"
	"github.com/parley-chat/parley-tui/internal/commands"
	"github.com/parley-chat/parley-tui/internal/config"
	"github.com/parley-chat/parley-tui/internal/update"
)

func bannerCheckedMsg(version string) update.CheckedMsg {
	return update.CheckedMsg{Release: update.Release{
		Version: version,
		URL:     "https://example.com/releases/" + version,
	}}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	client := api.NewClient("test-token", zap.NewNop())
	m := New(cfg, zap.NewNop(), client, nil, "1.0.0")
	m.resize(100, 30)
	return m
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func typeString(m *Model, s string) {
	for _, r := range s {
		press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingSlashOpensPalette(t *testing.T) {
	m := newTestModel(t)

	assert.False(t, m.palette.Visible())

	typeString(m, "/")
	assert.True(t, m.palette.Visible())
	assert.Equal(t, "/", m.input.Value())
}

func TestSlashTriggersCommandFetch(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.NotNil(t, cmd, "typing the trigger should start a fetch")
	assert.True(t, m.fetching)

	// Further typing narrows the query without refetching.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	assert.Equal(t, "/h", m.matcher.Query())
}

func TestMatcherSeesKeysBeforeInput(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/")

	before := m.matcher.Selected()
	press(m, tea.KeyMsg{Type: tea.KeyDown})

	assert.Equal(t, before+1, m.matcher.Selected())
	assert.Equal(t, "/", m.input.Value(), "handled keys must not reach the input")
}

func TestEscapeClosesPaletteAndClearsInput(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/he")
	require.True(t, m.palette.Visible())

	press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.palette.Visible())
	assert.Equal(t, "", m.input.Value())
}

func TestEnterRunsSelectedCommand(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/clear")
	m.messages = []message{{role: roleUser, body: "old"}}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.messages, "clear command should empty the transcript")
	assert.Equal(t, "", m.input.Value())
	assert.False(t, m.palette.Visible())
}

func TestQuitCommandReturnsQuit(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/quit")

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestIgnoredKeysFallThroughToInput(t *testing.T) {
	m := newTestModel(t)

	typeString(m, "hello")
	assert.Equal(t, "hello", m.input.Value())
	assert.False(t, m.palette.Visible(), "palette stays closed without the trigger")
}

func TestEnterSendsMessageWhenPaletteClosed(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "hello there")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, m.messages, 1)
	assert.Equal(t, roleUser, m.messages[0].role)
	assert.Equal(t, "hello there", m.messages[0].body)
	assert.Equal(t, "", m.input.Value())
}

func TestStaleCommandFetchDropped(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/")

	// A generation the fetcher never issued must be ignored.
	m.Update(commands.LoadedMsg{
		Generation: 999,
		Commands:   []commands.Command{{Name: "stale"}},
	})

	for _, c := range m.commandSet {
		assert.NotEqual(t, "stale", c.Name)
	}
}

func TestHelpCommandListsCommands(t *testing.T) {
	m := newTestModel(t)
	typeString(m, "/help")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotEmpty(t, m.messages)
	body := m.messages[len(m.messages)-1].body
	assert.Contains(t, body, "/help")
	assert.Contains(t, body, "/quit")
}

func TestQuestionOverlayCapturesKeys(t *testing.T) {
	m := newTestModel(t)

	m.Update(QuestionMsg{Prompt: "Pick", Options: []string{"a", "b"}})
	require.Equal(t, overlayQuestion, m.overlay)

	// Keys go to the question, not the input line.
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, "", m.input.Value())

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m.Update(cmd())
	assert.Equal(t, overlayNone, m.overlay)
	require.NotEmpty(t, m.messages)
	assert.Equal(t, "b", m.messages[len(m.messages)-1].body)
}

func TestAssistantMessageRendered(t *testing.T) {
	m := newTestModel(t)

	m.Update(AssistantMsg{Markdown: "# Heading\n\nSome body text."})

	require.Len(t, m.messages, 1)
	assert.Equal(t, roleAssistant, m.messages[0].role)
	assert.True(t, strings.Contains(m.vp.View(), "Heading") ||
		strings.Contains(m.renderMessage(m.messages[0]), "Heading"))
}

func TestBannerDismissKey(t *testing.T) {
	m := newTestModel(t)

	// Banner appears when a newer release is reported.
	m.banner.Apply(bannerCheckedMsg("9.9.9"))
	require.True(t, m.banner.Visible())

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.False(t, m.banner.Visible())
}

func TestDismissKeyTypesWhenInputNonEmpty(t *testing.T) {
	m := newTestModel(t)
	m.banner.Apply(bannerCheckedMsg("9.9.9"))

	typeString(m, "fix")
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Equal(t, "fixx", m.input.Value())
	assert.True(t, m.banner.Visible(), "typing must not dismiss the banner")
}

func TestWindowResizePropagates(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 120, m.vp.Width)
}

func TestNoMatchQueryKeepsPaletteOpen(t *testing.T) {
	m := newTestModel(t)

	typeString(m, "/xyzzy")
	require.True(t, m.palette.Visible(), "popup must stay open with no matches")

	// Once the fetch lands the no-match state shows instead of the loader.
	m.Update(commands.LoadedMsg{Generation: 1, Commands: commands.Builtins()})
	assert.Contains(t, m.palette.View(), "No matching commands")
}

func TestFailedFetchSurfacedInPalette(t *testing.T) {
	m := newTestModel(t)

	typeString(m, "/")
	m.Update(commands.FailedMsg{Generation: 1, Err: assert.AnError})

	require.True(t, m.palette.Visible())
	assert.Contains(t, m.palette.View(), "Could not load commands")
}

func TestMfaCommandOpensTwoFactorOverlay(t *testing.T) {
	m := newTestModel(t)

	typeString(m, "/mfa")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, overlayTotp, m.overlay)
	view := m.View()
	assert.Contains(t, view, "Enable")
	assert.Contains(t, view, "Disable")
}
