// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the client side of two-factor enrollment.
//
// The server owns the authentication protocol; this package only walks the
// user through its pre-existing endpoints: begin enrollment, confirm with
// a TOTP code, show recovery codes once. Codes are checked locally with
// the otp library before the round trip so typos fail fast, but the
// server's confirmation is authoritative.
package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// =============================================================================
// SERVER COLLABORATOR
// =============================================================================

// Enrollment is what the server hands back when enrollment begins.
type Enrollment struct {
	// Secret is the base32 TOTP secret for manual entry.
	Secret string `json:"secret"`

	// URL is the otpauth:// provisioning URL for authenticator apps.
	URL string `json:"url"`
}

// Service is the API collaborator for the enrollment flow.
type Service interface {
	BeginTOTP(ctx context.Context) (Enrollment, error)
	ConfirmTOTP(ctx context.Context, code string) (recoveryCodes []string, err error)
	DisableTOTP(ctx context.Context, code string) error
}

// requestTimeout bounds each enrollment round trip.
const requestTimeout = 15 * time.Second

// =============================================================================
// FLOW STATE MACHINE
// =============================================================================

// Step is the current position in the enrollment flow.
type Step int

const (
	// StepIdle means enrollment has not started.
	StepIdle Step = iota

	// StepStarting means the begin request is in flight.
	StepStarting

	// StepVerify means the secret is displayed and the flow is waiting
	// for a code from the user's authenticator app.
	StepVerify

	// StepConfirming means the confirm request is in flight.
	StepConfirming

	// StepRecovery means enrollment succeeded and the recovery codes are
	// on screen. They are shown exactly once.
	StepRecovery

	// StepDone means the user acknowledged the recovery codes.
	StepDone
)

// String returns a short name for the step.
func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepStarting:
		return "starting"
	case StepVerify:
		return "verify"
	case StepConfirming:
		return "confirming"
	case StepRecovery:
		return "recovery"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// codePattern matches a six digit TOTP code.
var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ErrMalformedCode rejects input that is not a six digit code before any
// round trip is made.
var ErrMalformedCode = errors.New("code must be six digits")

// Flow drives one enrollment session. It is owned by the UI goroutine;
// the network round trips run as tea.Cmds and deliver messages back.
type Flow struct {
	svc Service
	log *zap.Logger

	step       Step
	enrollment Enrollment
	recovery   []string
	lastErr    error
}

// NewFlow creates an idle enrollment flow.
func NewFlow(svc Service, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{svc: svc, log: log}
}

// Step returns the current flow position.
func (f *Flow) Step() Step {
	return f.step
}

// Enrollment returns the secret and provisioning URL; valid from
// StepVerify onward.
func (f *Flow) Enrollment() Enrollment {
	return f.enrollment
}

// RecoveryCodes returns the one-time recovery codes; valid in
// StepRecovery only.
func (f *Flow) RecoveryCodes() []string {
	return f.recovery
}

// Err returns the most recent failure, cleared on the next transition.
func (f *Flow) Err() error {
	return f.lastErr
}

// =============================================================================
// FLOW MESSAGES
// =============================================================================

// StartedMsg delivers the enrollment secret.
type StartedMsg struct {
	Enrollment Enrollment
}

// ConfirmedMsg delivers the recovery codes after a successful confirm.
type ConfirmedMsg struct {
	RecoveryCodes []string
}

// FailedMsg reports a failed round trip; the flow stays on its previous
// interactive step so the user can retry.
type FailedMsg struct {
	Err error
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Begin starts enrollment. Returns nil if the flow is already past idle.
func (f *Flow) Begin() tea.Cmd {
	if f.step != StepIdle {
		return nil
	}
	f.step = StepStarting
	f.lastErr = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		enr, err := f.svc.BeginTOTP(ctx)
		if err != nil {
			return FailedMsg{Err: err}
		}
		return StartedMsg{Enrollment: enr}
	}
}

// ValidateLocally checks a code against the enrollment secret without a
// round trip. Used for instant feedback; the server still has the final
// word.
func (f *Flow) ValidateLocally(code string) bool {
	if !codePattern.MatchString(code) {
		return false
	}
	return totp.Validate(code, f.enrollment.Secret)
}

// Confirm submits a code. Returns nil unless the flow is waiting on a
// code; malformed codes are rejected without a round trip.
func (f *Flow) Confirm(code string) tea.Cmd {
	if f.step != StepVerify {
		return nil
	}
	if !codePattern.MatchString(code) {
		f.lastErr = ErrMalformedCode
		return nil
	}
	f.step = StepConfirming
	f.lastErr = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		codes, err := f.svc.ConfirmTOTP(ctx, code)
		if err != nil {
			return FailedMsg{Err: err}
		}
		return ConfirmedMsg{RecoveryCodes: codes}
	}
}

// DisabledMsg reports that two-factor was switched off server side.
type DisabledMsg struct{}

// Disable turns two-factor off for an already enrolled account. It does
// not interact with the enrollment steps; a current code is required so a
// stolen session cannot silently drop the second factor.
func (f *Flow) Disable(code string) tea.Cmd {
	if !codePattern.MatchString(code) {
		f.lastErr = ErrMalformedCode
		return nil
	}
	f.lastErr = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := f.svc.DisableTOTP(ctx, code); err != nil {
			return FailedMsg{Err: err}
		}
		return DisabledMsg{}
	}
}

// Acknowledge records that the user has seen the recovery codes and
// finishes the flow. The codes are discarded.
func (f *Flow) Acknowledge() {
	if f.step != StepRecovery {
		return
	}
	f.recovery = nil
	f.step = StepDone
}

// Apply advances the state machine with a delivered message. Unrelated
// messages are ignored so the flow can share the host's update loop.
func (f *Flow) Apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case StartedMsg:
		if f.step != StepStarting {
			return
		}
		f.enrollment = msg.Enrollment
		f.step = StepVerify

	case ConfirmedMsg:
		if f.step != StepConfirming {
			return
		}
		f.recovery = msg.RecoveryCodes
		f.step = StepRecovery
		f.log.Info("two-factor enrollment confirmed")

	case DisabledMsg:
		f.log.Info("two-factor disabled")

	case FailedMsg:
		f.lastErr = msg.Err
		switch f.step {
		case StepStarting:
			f.step = StepIdle
		case StepConfirming:
			f.step = StepVerify
		}
		f.log.Warn("two-factor enrollment step failed", zap.Error(msg.Err))
	}
}
