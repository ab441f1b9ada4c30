// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	latency time.Duration
	err     error
	calls   int
}

func (f *fakePinger) Ping(ctx context.Context) (time.Duration, error) {
	f.calls++
	return f.latency, f.err
}

func TestMonitorStartsConnecting(t *testing.T) {
	m := NewMonitor(&fakePinger{}, nil)
	assert.Equal(t, StatusConnecting, m.State().Status)
}

func TestMonitorConnectsOnSuccess(t *testing.T) {
	p := &fakePinger{latency: 42 * time.Millisecond}
	m := NewMonitor(p, nil)

	cmd := m.Start()
	require.NotNil(t, cmd)
	m.Apply(cmd())

	st := m.State()
	assert.Equal(t, StatusConnected, st.Status)
	assert.Equal(t, 42*time.Millisecond, st.Latency)
	assert.Zero(t, st.Failures)
}

func TestMonitorDegradesThenGoesOffline(t *testing.T) {
	m := NewMonitor(&fakePinger{}, nil)

	fail := PingResultMsg{Err: errors.New("refused")}

	m.Apply(fail)
	assert.Equal(t, StatusDegraded, m.State().Status)
	m.Apply(fail)
	assert.Equal(t, StatusDegraded, m.State().Status)
	m.Apply(fail)

	st := m.State()
	assert.Equal(t, StatusOffline, st.Status)
	assert.Equal(t, 3, st.Failures)

	// One success recovers fully.
	m.Apply(PingResultMsg{Latency: 10 * time.Millisecond})
	st = m.State()
	assert.Equal(t, StatusConnected, st.Status)
	assert.Zero(t, st.Failures)
}

func TestMonitorNotifiesOnChangeOnly(t *testing.T) {
	m := NewMonitor(&fakePinger{}, nil)

	var seen []Status
	m.Observe(func(s State) { seen = append(seen, s.Status) })

	ok := PingResultMsg{Latency: time.Millisecond}
	fail := PingResultMsg{Err: errors.New("down")}

	m.Apply(ok)   // connecting -> connected
	m.Apply(ok)   // no change
	m.Apply(fail) // connected -> degraded
	m.Apply(fail) // still degraded, no change
	m.Apply(fail) // degraded -> offline

	assert.Equal(t, []Status{StatusConnected, StatusDegraded, StatusOffline}, seen)
}

func TestMonitorRateLimitsRefresh(t *testing.T) {
	p := &fakePinger{}
	m := NewMonitor(p, nil)

	// Burst of 2, then the limiter holds the line.
	require.NotNil(t, m.Refresh())
	require.NotNil(t, m.Refresh())
	assert.Nil(t, m.Refresh())
}

func TestMonitorNextSchedulesLoop(t *testing.T) {
	m := NewMonitor(&fakePinger{}, nil)

	assert.NotNil(t, m.Next(PingResultMsg{}))
	assert.NotNil(t, m.Next(tickMsg{}))
	assert.Nil(t, m.Next("unrelated"))
}

func TestMonitorIgnoresUnrelatedMessages(t *testing.T) {
	m := NewMonitor(&fakePinger{}, nil)
	m.Apply("not a ping result")
	assert.Equal(t, StatusConnecting, m.State().Status)
}
