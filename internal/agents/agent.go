// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents manages subagent configurations: the named, reusable
// agent definitions the user can edit from the TUI.
package agents

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// AGENT DEFINITION
// =============================================================================

// Agent is a subagent configuration.
type Agent struct {
	// Name is the unique identifier, kebab-case (e.g. "code-reviewer").
	Name string `toml:"name" json:"name"`

	// Description tells the orchestrator when to delegate to this agent.
	Description string `toml:"description" json:"description"`

	// Model selects which model the agent runs on; empty inherits the
	// session default.
	Model string `toml:"model,omitempty" json:"model,omitempty"`

	// Prompt is the agent's system prompt.
	Prompt string `toml:"prompt" json:"prompt"`

	// Tools is the allowlist of tool names the agent may use; empty
	// means all tools.
	Tools []string `toml:"tools,omitempty" json:"tools,omitempty"`

	// UpdatedAt is set by the store on save.
	UpdatedAt time.Time `toml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// namePattern constrains agent names to kebab-case identifiers.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// KnownModels are the model aliases accepted by the editor. The server is
// the source of truth; this list only backs offline validation.
var KnownModels = []string{"", "inherit", "fast", "balanced", "powerful"}

// Validation errors.
var (
	ErrInvalidName   = errors.New("agent name must be kebab-case (e.g. code-reviewer)")
	ErrEmptyPrompt   = errors.New("agent prompt is required")
	ErrUnknownModel  = errors.New("unknown model alias")
	ErrEmptyToolName = errors.New("tool names must be non-empty")
)

// Validate checks an agent definition field by field and returns the
// first problem found per field, keyed by field name.
func (a Agent) Validate() map[string]error {
	problems := make(map[string]error)

	if !namePattern.MatchString(a.Name) {
		problems["name"] = ErrInvalidName
	}
	if strings.TrimSpace(a.Prompt) == "" {
		problems["prompt"] = ErrEmptyPrompt
	}
	if !knownModel(a.Model) {
		problems["model"] = fmt.Errorf("%w: %q", ErrUnknownModel, a.Model)
	}
	for _, tool := range a.Tools {
		if strings.TrimSpace(tool) == "" {
			problems["tools"] = ErrEmptyToolName
			break
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

func knownModel(model string) bool {
	for _, m := range KnownModels {
		if m == model {
			return true
		}
	}
	return false
}
