// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents manages subagent configurations.
package agents

import (
	"strings"
)

// =============================================================================
// EDITOR FORM STATE
// =============================================================================

// Field identifies one editable field in the agent editor form.
type Field int

const (
	FieldName Field = iota
	FieldDescription
	FieldModel
	FieldPrompt
	FieldTools
	fieldCount
)

// String returns the form label for the field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldDescription:
		return "Description"
	case FieldModel:
		return "Model"
	case FieldPrompt:
		return "Prompt"
	case FieldTools:
		return "Tools"
	default:
		return "?"
	}
}

// Editor is the form state for creating or editing one agent. It is plain
// bookkeeping: field values, focus, dirty flag, and per-field validation
// errors. Rendering and key handling live in the UI layer.
type Editor struct {
	original Agent
	values   [fieldCount]string
	focus    Field
	dirty    bool
	problems map[string]error
	isNew    bool
}

// NewEditor creates an editor prefilled from an existing agent.
func NewEditor(a Agent) *Editor {
	e := &Editor{original: a}
	e.values[FieldName] = a.Name
	e.values[FieldDescription] = a.Description
	e.values[FieldModel] = a.Model
	e.values[FieldPrompt] = a.Prompt
	e.values[FieldTools] = strings.Join(a.Tools, ", ")
	return e
}

// NewEditorBlank creates an editor for a brand new agent.
func NewEditorBlank() *Editor {
	e := NewEditor(Agent{})
	e.isNew = true
	return e
}

// IsNew reports whether the editor creates a new agent rather than
// editing an existing one.
func (e *Editor) IsNew() bool {
	return e.isNew
}

// Focus returns the currently focused field.
func (e *Editor) Focus() Field {
	return e.focus
}

// NextField moves focus forward, wrapping.
func (e *Editor) NextField() {
	e.focus = (e.focus + 1) % fieldCount
}

// PrevField moves focus backward, wrapping.
func (e *Editor) PrevField() {
	e.focus = (e.focus - 1 + fieldCount) % fieldCount
}

// Value returns the current text of a field.
func (e *Editor) Value(f Field) string {
	return e.values[f]
}

// SetValue updates a field, marks the form dirty, and clears that field's
// stale validation error.
func (e *Editor) SetValue(f Field, v string) {
	if e.values[f] == v {
		return
	}
	e.values[f] = v
	e.dirty = true
	if e.problems != nil {
		delete(e.problems, fieldKey(f))
	}
}

// Dirty reports whether any field differs from its initial value.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Problem returns the validation error for a field, if any.
func (e *Editor) Problem(f Field) error {
	if e.problems == nil {
		return nil
	}
	return e.problems[fieldKey(f)]
}

// Build assembles an Agent from the form and validates it. On failure the
// per-field problems are retained for display and ok is false.
func (e *Editor) Build() (Agent, bool) {
	a := Agent{
		Name:        strings.TrimSpace(e.values[FieldName]),
		Description: strings.TrimSpace(e.values[FieldDescription]),
		Model:       strings.TrimSpace(e.values[FieldModel]),
		Prompt:      e.values[FieldPrompt],
		Tools:       splitTools(e.values[FieldTools]),
	}

	e.problems = a.Validate()
	return a, e.problems == nil
}

// splitTools parses the comma-separated tools field.
func splitTools(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// fieldKey maps form fields to Validate's problem keys.
func fieldKey(f Field) string {
	switch f {
	case FieldName:
		return "name"
	case FieldModel:
		return "model"
	case FieldPrompt:
		return "prompt"
	case FieldTools:
		return "tools"
	default:
		return strings.ToLower(f.String())
	}
}
