// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package update checks for newer client releases and drives the update
// banner shown at the top of the chat view.
package update

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// =============================================================================
// VERSION COMPARISON
// =============================================================================

// CompareVersions orders two dotted version strings. It returns -1, 0, or
// 1 as a is older than, equal to, or newer than b. A leading "v" and any
// pre-release suffix after "-" are ignored; missing segments count as 0.
func CompareVersions(a, b string) int {
	as := segments(a)
	bs := segments(b)

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// segments parses "v1.2.3-rc1" into [1 2 3]. Unparseable segments count
// as 0 so a garbage version never panics, it just sorts low.
func segments(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			n = 0
		}
		out[i] = n
	}
	return out
}

// =============================================================================
// RELEASE CHECK
// =============================================================================

// Release describes the newest published client build.
type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes,omitempty"`
}

// Source fetches the latest release, implemented by the API client.
type Source interface {
	LatestRelease(ctx context.Context) (Release, error)
}

const checkTimeout = 10 * time.Second

// CheckedMsg delivers the result of a release check. A failed check
// carries Err and an empty Release; the banner simply stays hidden.
type CheckedMsg struct {
	Release Release
	Err     error
}

// Check returns a command that fetches the latest release.
func Check(src Source, log *zap.Logger) tea.Cmd {
	if log == nil {
		log = zap.NewNop()
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		rel, err := src.LatestRelease(ctx)
		if err != nil {
			// Update checks are best effort; the app works without them.
			log.Debug("release check failed", zap.Error(err))
			return CheckedMsg{Err: err}
		}
		return CheckedMsg{Release: rel}
	}
}

// =============================================================================
// BANNER STATE
// =============================================================================

// Banner tracks whether the "new version available" notice should show.
// Dismissal is per session; the banner returns on the next run if the
// user still has not updated.
type Banner struct {
	current   string
	release   Release
	available bool
	dismissed bool
}

// NewBanner creates a hidden banner for the running version.
func NewBanner(currentVersion string) *Banner {
	return &Banner{current: currentVersion}
}

// Apply folds a check result into the banner state.
func (b *Banner) Apply(msg tea.Msg) {
	checked, ok := msg.(CheckedMsg)
	if !ok || checked.Err != nil {
		return
	}
	b.release = checked.Release
	b.available = CompareVersions(b.current, checked.Release.Version) < 0
}

// Dismiss hides the banner for the rest of the session.
func (b *Banner) Dismiss() {
	b.dismissed = true
}

// Visible reports whether the banner should render.
func (b *Banner) Visible() bool {
	return b.available && !b.dismissed
}

// Release returns the advertised release; meaningful only when a check
// has completed.
func (b *Banner) Release() Release {
	return b.release
}
