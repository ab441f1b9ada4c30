// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connection tracks server reachability for the status badge.
//
// A Monitor periodically pings the server and classifies the link as
// connected, degraded, or offline. Polls are rate limited so a flood of
// UI events cannot turn into a flood of health checks.
package connection

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// =============================================================================
// STATUS
// =============================================================================

// Status classifies the link to the server.
type Status int

const (
	// StatusConnecting is the initial state, before the first ping
	// has resolved.
	StatusConnecting Status = iota

	// StatusConnected means the last ping succeeded.
	StatusConnected

	// StatusDegraded means pings are failing but the link has not been
	// down long enough to call offline.
	StatusDegraded

	// StatusOffline means several consecutive pings have failed.
	StatusOffline
)

// String returns the badge label for the status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDegraded:
		return "degraded"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// State is a snapshot of the monitor, safe to hand to the UI.
type State struct {
	Status  Status
	Latency time.Duration
	// Failures counts consecutive failed pings; zero when connected.
	Failures int
}

// =============================================================================
// MONITOR
// =============================================================================

// Pinger is the health-check collaborator, implemented by the API client.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

const (
	// pingTimeout bounds a single health check.
	pingTimeout = 5 * time.Second

	// pollInterval is the steady-state gap between health checks.
	pollInterval = 15 * time.Second

	// offlineThreshold is how many consecutive failures flip the status
	// from degraded to offline.
	offlineThreshold = 3
)

// Monitor owns the reachability state. Ping round trips run as tea.Cmds;
// Apply folds their results back in on the UI goroutine. Observers are
// notified on every status change.
type Monitor struct {
	pinger  Pinger
	log     *zap.Logger
	limiter *rate.Limiter

	mu        sync.Mutex
	state     State
	observers []func(State)
}

// NewMonitor creates a monitor in the connecting state.
func NewMonitor(p Pinger, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		pinger: p,
		log:    log,
		// Steady-state one poll per interval, with a small burst so a
		// manual refresh is never silently dropped.
		limiter: rate.NewLimiter(rate.Every(pollInterval), 2),
	}
}

// State returns the current snapshot.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Observe registers a callback invoked (on the Apply caller's goroutine)
// whenever the status changes.
func (m *Monitor) Observe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// =============================================================================
// POLLING
// =============================================================================

// PingResultMsg carries the outcome of one health check.
type PingResultMsg struct {
	Latency time.Duration
	Err     error
}

// tickMsg re-arms the poll loop.
type tickMsg struct{}

// Start returns the command that kicks off the poll loop. Feed every
// returned message back through Apply and Next.
func (m *Monitor) Start() tea.Cmd {
	return m.ping()
}

// Next schedules the follow-up after a delivered message. It returns nil
// for messages the monitor does not own.
func (m *Monitor) Next(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case PingResultMsg:
		return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
	case tickMsg:
		return m.ping()
	default:
		return nil
	}
}

// Refresh forces an immediate health check, subject to the rate limit.
// Returns nil when the limiter rejects the poll.
func (m *Monitor) Refresh() tea.Cmd {
	if !m.limiter.Allow() {
		return nil
	}
	return m.doPing()
}

// ping consumes a limiter token before checking. When the token is not
// available the check is skipped and retried on the next tick, keeping
// the loop alive without exceeding the poll rate.
func (m *Monitor) ping() tea.Cmd {
	if !m.limiter.Allow() {
		return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
	}
	return m.doPing()
}

func (m *Monitor) doPing() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		latency, err := m.pinger.Ping(ctx)
		return PingResultMsg{Latency: latency, Err: err}
	}
}

// Apply folds a ping result into the state and notifies observers when
// the status changed. Unrelated messages are ignored.
func (m *Monitor) Apply(msg tea.Msg) {
	res, ok := msg.(PingResultMsg)
	if !ok {
		return
	}

	m.mu.Lock()
	prev := m.state.Status

	if res.Err != nil {
		m.state.Failures++
		m.state.Latency = 0
		if m.state.Failures >= offlineThreshold {
			m.state.Status = StatusOffline
		} else {
			m.state.Status = StatusDegraded
		}
	} else {
		m.state = State{Status: StatusConnected, Latency: res.Latency}
	}

	state := m.state
	var observers []func(State)
	if state.Status != prev {
		observers = append(observers, m.observers...)
	}
	m.mu.Unlock()

	if state.Status != prev {
		if res.Err != nil {
			m.log.Warn("connection status changed",
				zap.String("status", state.Status.String()),
				zap.Int("failures", state.Failures),
				zap.Error(res.Err))
		} else {
			m.log.Info("connection status changed",
				zap.String("status", state.Status.String()),
				zap.Duration("latency", state.Latency))
		}
	}
	for _, fn := range observers {
		fn(state)
	}
}
