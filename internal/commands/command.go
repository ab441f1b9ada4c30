// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command model and the palette
// matcher for the parley TUI.
package commands

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Kind tags where a command came from. It is purely presentational; the
// matcher treats all kinds the same.
type Kind string

const (
	// KindBuiltin is a command shipped with the client.
	KindBuiltin Kind = "builtin"

	// KindCustom is a user-defined command from the server.
	KindCustom Kind = "custom"

	// KindInteractive is a command that opens a follow-up dialog.
	KindInteractive Kind = "interactive"

	// KindPlugin is a command contributed by a plugin.
	KindPlugin Kind = "plugin"
)

// Command represents an invocable chat command.
//
// Commands are immutable once fetched; the working set is always replaced
// wholesale, never mutated in place. Name uniqueness within a list is the
// server's responsibility and is not enforced here.
type Command struct {
	// Name is the canonical identifier, lowercase, without the slash
	// (e.g. "commit").
	Name string `json:"name"`

	// Display is the human-facing label, usually with a leading slash
	// (e.g. "/commit").
	Display string `json:"display"`

	// Description is shown alongside the command in the palette.
	Description string `json:"description"`

	// ArgumentHint is an optional hint shown after the display name
	// (e.g. "<message>").
	ArgumentHint string `json:"argument_hint,omitempty"`

	// Kind tags the command's provenance.
	Kind Kind `json:"kind"`

	// Source is a free-form provenance tag, only meaningful for
	// plugin-provided commands (e.g. the plugin name).
	Source string `json:"source,omitempty"`
}

// Label returns the text to show for the command, falling back to a
// slash-prefixed Name when Display is empty.
func (c Command) Label() string {
	if c.Display != "" {
		return c.Display
	}
	return "/" + c.Name
}

// Builtins returns the commands the client knows about without asking the
// server. The fetched list replaces these wholesale once it arrives.
func Builtins() []Command {
	return []Command{
		{Name: "help", Display: "/help", Description: "Show available commands and shortcuts", Kind: KindBuiltin},
		{Name: "clear", Display: "/clear", Description: "Clear the conversation", Kind: KindBuiltin},
		{Name: "agents", Display: "/agents", Description: "Open the subagent editor", Kind: KindInteractive},
		{Name: "todos", Display: "/todos", Description: "Show the agent's todo list", Kind: KindBuiltin},
		{Name: "status", Display: "/status", Description: "Show connection and version status", Kind: KindBuiltin},
		{Name: "mfa", Display: "/mfa", Description: "Set up two-factor authentication", Kind: KindInteractive},
		{Name: "quit", Display: "/quit", Description: "Exit parley", Kind: KindBuiltin},
	}
}
