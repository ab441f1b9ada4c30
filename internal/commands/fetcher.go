// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command model and the palette
// matcher for the parley TUI.
package commands

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FETCHER
// =============================================================================

// Lister is the collaborator that retrieves the command list from the
// server. Transport, auth, and error handling live behind this interface.
type Lister interface {
	ListCommands(ctx context.Context, scopeID string) ([]Command, error)
}

// fetchTimeout bounds a single command list fetch.
const fetchTimeout = 10 * time.Second

// Fetcher issues command list fetches and guards against out-of-order
// responses. Rapid scope changes can leave two fetches in flight; each
// fetch gets a monotonic generation and only the latest generation may be
// applied to the matcher.
type Fetcher struct {
	api Lister
	log *zap.Logger
	gen atomic.Int64
}

// NewFetcher creates a fetcher over the given collaborator. The logger may
// be nil.
func NewFetcher(api Lister, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{api: api, log: log}
}

// LoadedMsg delivers a fetched command list back into the update loop.
type LoadedMsg struct {
	Generation int64
	Commands   []Command
}

// FailedMsg reports a failed fetch. The working set is left at its last
// known value; the palette stays usable with stale or empty data.
type FailedMsg struct {
	Generation int64
	Err        error
}

// Fetch returns a tea.Cmd that retrieves the command list for the given
// scope. The returned message carries the fetch generation; apply it only
// if Current still accepts that generation.
func (f *Fetcher) Fetch(scopeID string) tea.Cmd {
	gen := f.gen.Add(1)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		cmds, err := f.api.ListCommands(ctx, scopeID)
		if err != nil {
			f.log.Warn("command fetch failed",
				zap.String("scope", scopeID),
				zap.Int64("generation", gen),
				zap.Error(err))
			return FailedMsg{Generation: gen, Err: err}
		}

		return LoadedMsg{Generation: gen, Commands: cmds}
	}
}

// Current reports whether gen is the most recently issued generation.
// Responses from superseded fetches must be discarded.
func (f *Fetcher) Current(gen int64) bool {
	return gen == f.gen.Load()
}
