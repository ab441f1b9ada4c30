// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command model and the palette
// matcher for the parley TUI.
package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLister returns canned command lists keyed by scope.
type fakeLister struct {
	byScope map[string][]Command
	err     error
	calls   []string
}

func (f *fakeLister) ListCommands(_ context.Context, scopeID string) ([]Command, error) {
	f.calls = append(f.calls, scopeID)
	if f.err != nil {
		return nil, f.err
	}
	return f.byScope[scopeID], nil
}

func TestFetcherDeliversCommands(t *testing.T) {
	api := &fakeLister{byScope: map[string][]Command{
		"proj-1": {{Name: "commit"}, {Name: "review"}},
	}}
	f := NewFetcher(api, zap.NewNop())

	msg := f.Fetch("proj-1")()
	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok, "expected LoadedMsg, got %T", msg)
	assert.Len(t, loaded.Commands, 2)
	assert.True(t, f.Current(loaded.Generation))
	assert.Equal(t, []string{"proj-1"}, api.calls)
}

func TestFetcherDropsStaleGeneration(t *testing.T) {
	api := &fakeLister{byScope: map[string][]Command{
		"old": {{Name: "old-cmd"}},
		"new": {{Name: "new-cmd"}},
	}}
	f := NewFetcher(api, zap.NewNop())

	// Two fetches in flight; the first resolves after the second was
	// issued and must be discarded.
	first := f.Fetch("old")
	second := f.Fetch("new")

	staleMsg := first().(LoadedMsg)
	freshMsg := second().(LoadedMsg)

	assert.False(t, f.Current(staleMsg.Generation), "stale generation accepted")
	assert.True(t, f.Current(freshMsg.Generation), "fresh generation rejected")
}

func TestFetcherReportsFailure(t *testing.T) {
	api := &fakeLister{err: errors.New("boom")}
	f := NewFetcher(api, zap.NewNop())

	msg := f.Fetch("proj-1")()
	failed, ok := msg.(FailedMsg)
	require.True(t, ok, "expected FailedMsg, got %T", msg)
	assert.Error(t, failed.Err)
	// The failed generation is still the latest; the host simply keeps
	// its previous working set.
	assert.True(t, f.Current(failed.Generation))
}

func TestFetcherNilLogger(t *testing.T) {
	api := &fakeLister{err: errors.New("boom")}
	f := NewFetcher(api, nil)

	// Must not panic while logging the failure.
	msg := f.Fetch("x")()
	_, ok := msg.(FailedMsg)
	assert.True(t, ok)
}
