// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-chat/parley-tui/internal/auth"
	"github.com/parley-chat/parley-tui/internal/ui/styles"
)

// =============================================================================
// TWO-FACTOR SETUP VIEW
// =============================================================================

// totpMode selects which path the view is walking.
type totpMode int

const (
	// totpChoose is the opening Enable/Disable choice.
	totpChoose totpMode = iota

	// totpEnroll walks the enrollment flow: secret, code, recovery codes.
	totpEnroll

	// totpDisable asks for a current code and switches two-factor off.
	totpDisable
)

// Outcome values reported once the view finishes.
const (
	OutcomeEnabled  = "enabled"
	OutcomeDisabled = "disabled"
)

// TotpSetup renders two-factor management: an Enable/Disable choice, the
// enrollment flow (secret display, code entry, one-time recovery codes),
// and the disable-with-code path.
type TotpSetup struct {
	theme *styles.Theme
	flow  *auth.Flow
	modal *Modal
	input textinput.Model

	mode    totpMode
	done    bool
	outcome string
	width   int
}

// NewTotpSetup creates the view over an enrollment flow, opening on the
// Enable/Disable choice.
func NewTotpSetup(theme *styles.Theme, flow *auth.Flow) *TotpSetup {
	ti := textinput.New()
	ti.Placeholder = "123456"
	ti.Prompt = "Code: "
	ti.CharLimit = 6
	ti.Width = 10

	modal := NewModal(theme, "Two-factor authentication", "Enable", "Disable")
	modal.SetBody("Manage two-factor authentication for this account.")

	return &TotpSetup{theme: theme, flow: flow, modal: modal, input: ti, width: 60}
}

// SetWidth sets the rendered width.
func (v *TotpSetup) SetWidth(w int) {
	if w < 40 {
		w = 40
	}
	v.width = w
}

// Update routes keys and flow messages while the view is open.
func (v *TotpSetup) Update(msg tea.Msg) tea.Cmd {
	v.flow.Apply(msg)

	if _, ok := msg.(auth.DisabledMsg); ok && v.mode == totpDisable {
		v.done = true
		v.outcome = OutcomeDisabled
		return nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch v.mode {
	case totpChoose:
		return v.updateChoice(key)
	case totpEnroll:
		return v.updateEnroll(key)
	case totpDisable:
		return v.updateDisable(key)
	}
	return nil
}

// updateChoice handles the Enable/Disable button row.
func (v *TotpSetup) updateChoice(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "tab", "right", "down":
		v.modal.Next()
	case "shift+tab", "left", "up":
		v.modal.Prev()
	case "esc":
		v.done = true
	case "enter":
		switch v.modal.FocusedButton() {
		case "Enable":
			v.mode = totpEnroll
			return tea.Batch(v.flow.Begin(), v.input.Focus())
		case "Disable":
			v.mode = totpDisable
			return v.input.Focus()
		}
	}
	return nil
}

// updateEnroll handles the enrollment steps. Enter submits the entered
// code; on the recovery screen enter acknowledges.
func (v *TotpSetup) updateEnroll(key tea.KeyMsg) tea.Cmd {
	switch v.flow.Step() {
	case auth.StepVerify:
		if key.String() == "enter" {
			return v.flow.Confirm(strings.TrimSpace(v.input.Value()))
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(key)
		return cmd

	case auth.StepRecovery:
		if key.String() == "enter" {
			v.flow.Acknowledge()
			v.done = true
			v.outcome = OutcomeEnabled
		}
	}
	return nil
}

// updateDisable handles the disable-with-code step.
func (v *TotpSetup) updateDisable(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter":
		return v.flow.Disable(strings.TrimSpace(v.input.Value()))
	case "esc":
		v.done = true
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(key)
	return cmd
}

// Done reports whether the view has finished and should close.
func (v *TotpSetup) Done() bool {
	return v.done
}

// Outcome reports what the finished view accomplished: OutcomeEnabled,
// OutcomeDisabled, or empty when dismissed.
func (v *TotpSetup) Outcome() string {
	return v.outcome
}

// View renders the current step.
func (v *TotpSetup) View() string {
	if v.mode == totpChoose {
		return v.modal.View()
	}

	var parts []string
	parts = append(parts, v.theme.ModalTitle.Render("Two-factor authentication"))

	switch {
	case v.mode == totpDisable:
		parts = append(parts,
			v.theme.ModalBody.Render("Enter a current code to turn two-factor off:"),
			"",
			v.input.View(),
			v.theme.PaletteHint.Render("enter confirm | esc cancel"),
		)

	default:
		parts = append(parts, v.enrollParts()...)
	}

	if err := v.flow.Err(); err != nil {
		parts = append(parts, v.theme.ErrorStyle.Render(
			styles.StatusIndicators.Error+" "+err.Error()))
	}

	return v.theme.ModalBox.Width(v.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// enrollParts renders the body for the current enrollment step.
func (v *TotpSetup) enrollParts() []string {
	var parts []string

	switch v.flow.Step() {
	case auth.StepIdle, auth.StepStarting:
		parts = append(parts, v.theme.ModalBody.Render("Contacting server..."))

	case auth.StepVerify, auth.StepConfirming:
		enr := v.flow.Enrollment()
		parts = append(parts,
			v.theme.ModalBody.Render("Add this secret to your authenticator app:"),
			v.theme.SecretBox.Render(enr.Secret),
			v.theme.PaletteHint.Render(enr.URL),
			"",
			v.input.View(),
		)
		if v.flow.Step() == auth.StepConfirming {
			parts = append(parts, v.theme.PaletteHint.Render("Verifying..."))
		}

	case auth.StepRecovery:
		parts = append(parts,
			v.theme.ModalBody.Render("Save these recovery codes. They are shown only once:"),
			"",
		)
		for _, code := range v.flow.RecoveryCodes() {
			parts = append(parts, v.theme.RecoveryCode.Render("  "+code))
		}
		parts = append(parts, "", v.theme.PaletteHint.Render("enter when saved"))

	case auth.StepDone:
		parts = append(parts, v.theme.SuccessStyle.Render(
			styles.StatusIndicators.Success+" Two-factor enabled"))
	}
	return parts
}
